package email

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/markelira/elira-insight/log"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,4}$`)

type Config struct {
	Enable    bool   `yaml:"enable"`
	APIKey    string `yaml:"api_key"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
}

// Service delivers notification emails through SendGrid. When disabled it
// logs and drops, like the rest of the optional outbound integrations.
type Service struct {
	cfg  Config
	from *sgmail.Email
}

func NewService(cfg Config) *Service {
	if cfg.FromEmail == "" {
		cfg.FromEmail = "info@elira.hu"
	}
	if cfg.FromName == "" {
		cfg.FromName = "Elira"
	}
	return &Service{
		cfg:  cfg,
		from: sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
	}
}

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

// Send delivers one message. A delivery failure is the caller's to log and
// must never fail a job run.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enable {
		log.Info(ctx).Str("to", msg.ToEmail).Msg("email function is disable, skip send")
		return nil
	}
	if !ValidateEmail(msg.ToEmail) {
		return fmt.Errorf("invalid recipient address: %s", msg.ToEmail)
	}
	html := msg.HTML
	if html == "" {
		html = "<p>" + msg.Text + "</p>"
	}
	m := sgmail.NewSingleEmail(s.from, msg.Subject, sgmail.NewEmail(msg.ToName, msg.ToEmail), msg.Text, html)
	resp, err := sendgrid.NewSendClient(s.cfg.APIKey).Send(m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}
