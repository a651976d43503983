package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/markelira/elira-insight/config"
	"github.com/markelira/elira-insight/constant"
	"github.com/markelira/elira-insight/controller"
	"github.com/markelira/elira-insight/db"
	"github.com/markelira/elira-insight/email"
	"github.com/markelira/elira-insight/internal/auth"
	"github.com/markelira/elira-insight/internal/lock"
	"github.com/markelira/elira-insight/internal/scheduler"
	"github.com/markelira/elira-insight/internal/services"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/monitor"
	"github.com/markelira/elira-insight/router"
	"github.com/markelira/elira-insight/utils"
)

type Config struct {
	Port      int                    `yaml:"port"`
	DB        db.Config              `yaml:"mongodb"`
	Auth      auth.Config            `yaml:"auth"`
	Scheduler scheduler.Config       `yaml:"scheduler"`
	Insight   services.InsightConfig `yaml:"insight"`
	Lock      lock.Config            `yaml:"redis"`
	Monitor   monitor.Config         `yaml:"monitor"`
	Email     email.Config           `yaml:"email"`
	S3        config.S3              `yaml:"s3"`
}

var (
	ConfigFile = "config/server.yaml"
)

func main() {
	ctx := utils.SetupSignalContext() // use system signal
	f, err := os.Open(ConfigFile)
	if err != nil {
		log.Error(ctx).Err(err).Msg("failed to open config file")
		os.Exit(1)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		log.Error(ctx).Err(err).Msg("failed to read config file")
		os.Exit(1)
	}

	cfg := Config{}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		log.Error(ctx).Err(err).Msg("failed to unmarshal config file")
		os.Exit(1)
	}

	cli, err := db.Init(ctx, cfg.DB)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize mongodb client: %s", err))
	}
	defer func() {
		_ = cli.Disconnect(ctx)
	}()

	monitor.Init(ctx, cfg.Monitor)

	loc, err := time.LoadLocation(constant.DefaultTimezone)
	if err != nil {
		panic(fmt.Sprintf("failed to load timezone: %s", err))
	}

	locker := lock.NewNoopLocker()
	if cfg.Lock.Enable {
		locker, err = lock.NewRedisLocker(ctx, cfg.Lock)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize redis locker: %s", err))
		}
	}

	stores := services.NewStores(cli)
	emailer := email.NewService(cfg.Email)

	insightService := services.NewInsightService(cfg.Insight, stores, stores, stores, stores, emailer)
	reminderService := services.NewReminderService(stores, stores, loc)

	sched, err := scheduler.New(cfg.Scheduler, scheduler.NewRunStore(cli), locker)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize scheduler: %s", err))
	}
	if err = sched.Register(insightService); err != nil {
		panic("failed to register weekly insights job: " + err.Error())
	}
	if err = sched.Register(reminderService.DayBeforeJob()); err != nil {
		panic("failed to register 24h reminder job: " + err.Error())
	}
	if err = sched.Register(reminderService.HourBeforeJob()); err != nil {
		panic("failed to register 1h reminder job: " + err.Error())
	}
	if err = sched.Start(); err != nil {
		panic("failed to start scheduler: " + err.Error())
	}

	lg := logger.SetLogger(
		logger.WithLogger(log.CustomLogger),
	)

	eng := gin.New()
	eng.Use(
		gin.Recovery(),
		requestid.New(),
	)

	authMW := auth.NewMiddleware(cfg.Auth, auth.NewRoleLookup(cli))

	e := eng.Group("/v1")
	e.Use(
		lg,
		authMW.Authenticate(),
	)

	activityService := services.NewActivityService(cli, loc)
	if err = activityService.Start(); err != nil {
		panic("failed to start activity service: " + err.Error())
	}
	router.RegisterActivitiesRouter(
		e.Group("/activities"),
		authMW.RequireAdmin(),
		controller.NewActivityController(activityService),
	)

	notificationService := services.NewNotificationService(cli)
	if err = notificationService.Start(); err != nil {
		panic("failed to start notification service: " + err.Error())
	}
	router.RegisterNotificationsRouter(
		e.Group("/notifications"),
		controller.NewNotificationController(notificationService),
	)

	reportService := services.NewReportService(cfg.S3, cli)
	if err = reportService.Start(); err != nil {
		panic("failed to start report service: " + err.Error())
	}

	admin := e.Group("/admin")
	admin.Use(authMW.RequireAdmin())
	router.RegisterJobsRouter(
		admin.Group("/jobs"),
		controller.NewJobController(sched),
	)
	router.RegisterReportsRouter(
		admin.Group("/reports"),
		controller.NewReportController(reportService),
	)

	go func() {
		if err = eng.Run(fmt.Sprintf("0.0.0.0:%d", cfg.Port)); err != nil {
			panic(fmt.Sprintf("failed to start HTTP server: %s", err))
		}
	}()

	select {
	case <-ctx.Done():
		log.Info(ctx).Msg("received system signal, preparing exit")
	}
	if err = sched.Stop(); err != nil {
		log.Warn(ctx).Err(err).Msg("error when stop scheduler")
	}
	if err = activityService.Stop(); err != nil {
		log.Warn(ctx).Err(err).Msg("error when stop ActivityService")
	}
	if err = notificationService.Stop(); err != nil {
		log.Warn(ctx).Err(err).Msg("error when stop NotificationService")
	}
	log.Info(ctx).Msg("the Elira Insight Server has been shutdown gracefully")
}
