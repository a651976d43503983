package log

import (
	"context"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/markelira/elira-insight/utils"
)

const (
	KeyJob          = "job"
	KeyCourse       = "course_id"
	KeyLesson       = "lesson_id"
	KeyConsultation = "consultation_id"
	KeyNotification = "notification_id"
	KeyCompany      = "company_id"
	KeyTrend        = "trend"
	KeyWindowStart  = "window_start"
	KeyWindowEnd    = "window_end"
	KeyRequestID    = requestId
)

var lg zerolog.Logger
var out zerolog.ConsoleWriter

const (
	requestId = "request_id"
	userId    = "user_id"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	out = zerolog.NewConsoleWriter()
	out.TimeFormat = "2006-01-02T15:04:05.999Z07:00"
	lg = zerolog.New(out).With().Caller().Timestamp().Logger()
}

func CustomLogger(ctx *gin.Context, l zerolog.Logger) zerolog.Logger {
	return l.Output(out).With().
		Str(requestId, requestid.Get(ctx)).
		Logger()
}

func Info(ctx context.Context) *zerolog.Event {
	e := lg.Info().
		Str(userId, utils.GetUserID(ctx))
	gCtx, ok := ctx.(*gin.Context)
	if ok {
		e.Str(requestId, requestid.Get(gCtx))
	}
	return e
}

func Warn(ctx context.Context) *zerolog.Event {
	e := lg.Warn().Str(userId, utils.GetUserID(ctx))
	gCtx, ok := ctx.(*gin.Context)
	if ok {
		e.Str(requestId, requestid.Get(gCtx))
	}
	return e
}

func Error(ctx context.Context) *zerolog.Event {
	e := lg.Error().
		Str(userId, utils.GetUserID(ctx))
	gCtx, ok := ctx.(*gin.Context)
	if ok {
		e.Str(requestId, requestid.Get(gCtx))
	}
	return e
}
