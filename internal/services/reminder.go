package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/markelira/elira-insight/constant"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/models"
	"github.com/markelira/elira-insight/models/platform"
)

const (
	DayBeforeReminderJob  = "consultation_reminder_24h"
	HourBeforeReminderJob = "consultation_reminder_1h"

	WindowDayBefore  = "day_before"
	WindowHourBefore = "hour_before"
)

var hungarianMonths = [...]string{
	"január", "február", "március", "április", "május", "június",
	"július", "augusztus", "szeptember", "október", "november", "december",
}

// ReminderService owns both consultation reminder jobs. The two differ only
// in window width and reminder state field; the notification build and the
// guarded state transition are shared.
type ReminderService struct {
	consultations ConsultationSource
	notifications NotificationSink
	location      *time.Location
}

func NewReminderService(consultations ConsultationSource, notifications NotificationSink, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		consultations: consultations,
		notifications: notifications,
		location:      loc,
	}
}

// DayBeforeJob reminds 24 hours ahead, firing hourly over a [now+23h,
// now+25h] window.
func (rs *ReminderService) DayBeforeJob() *ReminderJob {
	return &ReminderJob{
		svc:         rs,
		name:        DayBeforeReminderJob,
		spec:        "@every 1h",
		window:      WindowDayBefore,
		aheadStart:  23 * time.Hour,
		aheadEnd:    25 * time.Hour,
		granularity: time.Hour,
	}
}

// HourBeforeJob reminds 1 hour ahead, firing every 15 minutes over a
// [now+50m, now+70m] window.
func (rs *ReminderService) HourBeforeJob() *ReminderJob {
	return &ReminderJob{
		svc:         rs,
		name:        HourBeforeReminderJob,
		spec:        "@every 15m",
		window:      WindowHourBefore,
		aheadStart:  50 * time.Minute,
		aheadEnd:    70 * time.Minute,
		granularity: 15 * time.Minute,
	}
}

type ReminderJob struct {
	svc         *ReminderService
	name        string
	spec        string
	window      string
	aheadStart  time.Duration
	aheadEnd    time.Duration
	granularity time.Duration
}

func (rj *ReminderJob) Name() string {
	return rj.name
}

func (rj *ReminderJob) Spec() string {
	return rj.spec
}

func (rj *ReminderJob) Window(now time.Time) time.Time {
	return now.Truncate(rj.granularity)
}

func (rj *ReminderJob) Run(ctx context.Context, now time.Time) (int, error) {
	return rj.svc.run(ctx, now, rj.window, rj.aheadStart, rj.aheadEnd)
}

func (rs *ReminderService) run(ctx context.Context, now time.Time, window string, aheadStart, aheadEnd time.Duration) (int, error) {
	windowStart := now.Add(aheadStart)
	windowEnd := now.Add(aheadEnd)

	consultations, err := rs.consultations.ListScheduled(ctx, windowStart, windowEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to list scheduled consultations: %w", err)
	}
	log.Info(ctx).
		Time(log.KeyWindowStart, windowStart).
		Time(log.KeyWindowEnd, windowEnd).
		Msgf("found %d consultations in reminder window\n", len(consultations))
	if len(consultations) == 0 {
		return 0, nil
	}

	pending := make([]*platform.Consultation, 0, len(consultations))
	notifications := make([]*models.Notification, 0, len(consultations))
	for _, consultation := range consultations {
		if reminderState(consultation, window) != platform.ReminderPending {
			log.Info(ctx).Str(log.KeyConsultation, consultation.ID.Hex()).Msg("reminder already sent, skip")
			continue
		}
		notifications = append(notifications, rs.buildReminder(consultation, window, now))
		pending = append(pending, consultation)
	}
	if len(notifications) == 0 {
		return 0, nil
	}

	// The notification ids are deterministic per (consultation, window),
	// so committing before the state transition cannot duplicate even if
	// the transition is retried by a later run.
	if err := rs.notifications.BulkUpsert(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to commit reminder notifications: %w", err)
	}

	sent := 0
	for _, consultation := range pending {
		won, err := rs.consultations.MarkReminderSent(ctx, consultation.ID, window)
		if err != nil {
			log.Error(ctx).Err(err).Str(log.KeyConsultation, consultation.ID.Hex()).Msg("failed to mark reminder sent")
			continue
		}
		if !won {
			log.Info(ctx).Str(log.KeyConsultation, consultation.ID.Hex()).Msg("reminder state already transitioned elsewhere")
			continue
		}
		sent++
	}
	return sent, nil
}

// reminderState treats a consultation without the window field as pending,
// which covers documents created before the reminder fields existed.
func reminderState(consultation *platform.Consultation, window string) string {
	state := consultation.Reminders.DayBefore
	if window == WindowHourBefore {
		state = consultation.Reminders.HourBefore
	}
	if state == "" {
		state = platform.ReminderPending
	}
	return state
}

func (rs *ReminderService) buildReminder(consultation *platform.Consultation, window string, now time.Time) *models.Notification {
	scheduled := consultation.ScheduledAt.In(rs.location)
	formattedTime := scheduled.Format("15:04")
	instructor := consultation.InstructorName
	if instructor == "" {
		instructor = "oktatóddal"
	}

	var (
		title     string
		message   string
		actionURL = "/dashboard"
		action    = "Részletek megtekintése"
	)
	meetingLink := usableMeetingLink(consultation.MeetingLink)
	if window == WindowHourBefore {
		title = "Konzultáció 1 órán belül!"
		followup := "Készülj fel!"
		if meetingLink != "" {
			followup = "Csatlakozz a meeting linkhez!"
			actionURL = meetingLink
			action = "Csatlakozás"
		}
		message = fmt.Sprintf("A %s való konzultációd %s-kor kezdődik. %s", instructor, formattedTime, followup)
	} else {
		title = "Holnap konzultáció!"
		formattedDate := FormatHungarianDate(scheduled)
		message = fmt.Sprintf("A %s való konzultációd holnap, %s %s-kor kezdődik. Készülj fel a megbeszélt témákra!",
			instructor, formattedDate, formattedTime)
	}

	metadata := map[string]interface{}{
		"consultation_id": consultation.ID.Hex(),
		"scheduled_at":    consultation.ScheduledAt,
	}
	if meetingLink != "" {
		metadata["meeting_link"] = meetingLink
	}
	return &models.Notification{
		ID:         models.ReminderNotificationID(consultation.ID.Hex(), window),
		UserID:     consultation.UserID,
		Type:       models.NotificationTypeConsultationReminder,
		Title:      title,
		Message:    message,
		Priority:   models.PriorityHigh,
		Read:       false,
		ActionURL:  actionURL,
		ActionText: action,
		Metadata:   metadata,
		CreatedAt:  now,
	}
}

// usableMeetingLink drops stored links that are not web URLs, so a bad
// value never ends up as the notification action.
func usableMeetingLink(link string) string {
	if strings.HasPrefix(link, constant.HTTPSSchema) || strings.HasPrefix(link, constant.HTTPSchema) {
		return link
	}
	return ""
}

// FormatHungarianDate renders "2026. augusztus 30." the way the client UI
// shows consultation dates.
func FormatHungarianDate(t time.Time) string {
	return fmt.Sprintf("%d. %s %d.", t.Year(), hungarianMonths[int(t.Month())-1], t.Day())
}
