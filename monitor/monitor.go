package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"gopkg.in/resty.v1"

	"github.com/markelira/elira-insight/log"
)

var (
	cfg    Config
	client *resty.Client
	once   sync.Once
)

type Config struct {
	Enable     bool   `yaml:"enable"`
	WebhookUrl string `yaml:"webhook_url"`
}

type Alarm struct {
	Job     string `json:"job" yaml:"job"`
	Message string `json:"message" yaml:"message"`
}

func Init(ctx context.Context, c Config) {
	once.Do(func() {
		cfg = c
		client = resty.New()
		log.Info(ctx).Str("webhook_url", c.WebhookUrl).Msgf("the monitoring alarm function has been %s\n", monitorSwitchStatus(c.Enable))
	})
}

// SendAlarm posts a job failure to the ops webhook. Disabled deployments
// only log.
func SendAlarm(ctx context.Context, job, message string) error {
	if !cfg.Enable {
		log.Info(ctx).Str(log.KeyJob, job).Msgf("monitor function is disable, skip alarm: %s", message)
		return nil
	}
	req := &Alarm{
		Job:     job,
		Message: message,
	}
	resp, err := client.R().SetBody(req).Post(cfg.WebhookUrl)
	if err := handleHTTPResponse(ctx, resp, err); err != nil {
		return err
	}
	return nil
}

// SendPanicAlarm formats a recovered panic for the webhook.
func SendPanicAlarm(ctx context.Context, job string, rec interface{}) error {
	return SendAlarm(ctx, job, fmt.Sprintf("job panicked: %v", rec))
}

func handleHTTPResponse(ctx context.Context, res *resty.Response, err error) error {
	if err != nil {
		log.Warn(ctx).Err(err).Msg("HTTP request failed")
		return err
	}
	if res.StatusCode() != http.StatusOK {
		log.Warn(ctx).
			Int("status_code", res.StatusCode()).
			Str("body", string(res.Body())).
			Msg("HTTP response not 200 failed")
		return errors.New(string(res.Body()))
	}
	return nil
}

func monitorSwitchStatus(enable bool) string {
	if enable {
		return "enabled"
	}
	return "disabled"
}
