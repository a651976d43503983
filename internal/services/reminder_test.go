package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/markelira/elira-insight/models"
	"github.com/markelira/elira-insight/models/platform"
)

type stubConsultationSource struct {
	consultations []*platform.Consultation
	transitions   map[string]int
	casLoses      map[string]bool
}

func newStubConsultationSource(consultations ...*platform.Consultation) *stubConsultationSource {
	return &stubConsultationSource{
		consultations: consultations,
		transitions:   make(map[string]int),
		casLoses:      make(map[string]bool),
	}
}

func (s *stubConsultationSource) ListScheduled(ctx context.Context, windowStart, windowEnd time.Time) ([]*platform.Consultation, error) {
	result := make([]*platform.Consultation, 0)
	for _, c := range s.consultations {
		if c.Status != platform.ConsultationScheduled {
			continue
		}
		if c.ScheduledAt.Before(windowStart) || c.ScheduledAt.After(windowEnd) {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (s *stubConsultationSource) MarkReminderSent(ctx context.Context, id interface{}, window string) (bool, error) {
	oid := id.(primitive.ObjectID)
	key := oid.Hex() + "/" + window
	if s.casLoses[key] {
		return false, nil
	}
	s.transitions[key]++
	for _, c := range s.consultations {
		if c.ID == oid {
			if window == WindowHourBefore {
				c.Reminders.HourBefore = platform.ReminderSent
			} else {
				c.Reminders.DayBefore = platform.ReminderSent
			}
		}
	}
	return true, nil
}

func consultationAt(scheduled time.Time) *platform.Consultation {
	return &platform.Consultation{
		Base:           platform.Base{ID: primitive.NewObjectID()},
		UserID:         "user-1",
		CourseID:       "course-1",
		InstructorName: "Kovács Annával",
		ScheduledAt:    scheduled,
		Status:         platform.ConsultationScheduled,
	}
}

func TestDayBeforeJob_SendsOncePerConsultation(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	source := newStubConsultationSource(consultationAt(now.Add(24 * time.Hour)))
	sink := &stubNotificationSink{}
	svc := NewReminderService(source, sink, time.UTC)
	job := svc.DayBeforeJob()

	count, err := job.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, sink.commits, 1)

	// second run over the same window: state is sent, nothing goes out
	count, err = job.Run(context.Background(), now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	require.Len(t, sink.commits, 1)
}

func TestDayBeforeJob_WindowEdges(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	tooSoon := consultationAt(now.Add(22 * time.Hour))
	inWindow := consultationAt(now.Add(24 * time.Hour))
	tooLate := consultationAt(now.Add(26 * time.Hour))
	source := newStubConsultationSource(tooSoon, inWindow, tooLate)
	sink := &stubNotificationSink{}
	svc := NewReminderService(source, sink, time.UTC)

	count, err := svc.DayBeforeJob().Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, sink.commits, 1)
	assert.Equal(t, inWindow.UserID, sink.commits[0][0].UserID)
}

func TestReminderRun_CASLossDoesNotCount(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	consultation := consultationAt(now.Add(time.Hour))
	source := newStubConsultationSource(consultation)
	source.casLoses[consultation.ID.Hex()+"/"+WindowHourBefore] = true
	sink := &stubNotificationSink{}
	svc := NewReminderService(source, sink, time.UTC)

	count, err := svc.HourBeforeJob().Run(context.Background(), now)
	require.NoError(t, err)
	// the upsert is idempotent by id, so losing the transition race only
	// means this run takes no credit
	assert.Equal(t, 0, count)
	require.Len(t, sink.commits, 1)
}

func TestBuildReminder_HourBeforeWithMeetingLink(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	consultation := consultationAt(now.Add(time.Hour))
	consultation.MeetingLink = "https://meet.elira.hu/abc"
	svc := NewReminderService(newStubConsultationSource(), &stubNotificationSink{}, time.UTC)

	n := svc.buildReminder(consultation, WindowHourBefore, now)

	assert.Equal(t, "Konzultáció 1 órán belül!", n.Title)
	assert.Equal(t, consultation.MeetingLink, n.ActionURL)
	assert.Equal(t, "Csatlakozás", n.ActionText)
	assert.Equal(t, models.PriorityHigh, n.Priority)
	assert.Contains(t, n.Message, "11:00")
	assert.Equal(t, models.ReminderNotificationID(consultation.ID.Hex(), WindowHourBefore), n.ID)
}

func TestBuildReminder_IgnoresNonWebMeetingLink(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	consultation := consultationAt(now.Add(time.Hour))
	consultation.MeetingLink = "zoommtg://zoom.us/join?confno=123"
	svc := NewReminderService(newStubConsultationSource(), &stubNotificationSink{}, time.UTC)

	n := svc.buildReminder(consultation, WindowHourBefore, now)

	assert.Equal(t, "/dashboard", n.ActionURL)
	assert.Equal(t, "Részletek megtekintése", n.ActionText)
	assert.NotContains(t, n.Metadata, "meeting_link")
	assert.Contains(t, n.Message, "Készülj fel!")
}

func TestReminderState_EmptyFieldIsPending(t *testing.T) {
	consultation := consultationAt(time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, platform.ReminderPending, reminderState(consultation, WindowDayBefore))
	assert.Equal(t, platform.ReminderPending, reminderState(consultation, WindowHourBefore))

	consultation.Reminders.DayBefore = platform.ReminderSent
	assert.Equal(t, platform.ReminderSent, reminderState(consultation, WindowDayBefore))
	assert.Equal(t, platform.ReminderPending, reminderState(consultation, WindowHourBefore))
}

func TestBuildReminder_DayBeforeDate(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	consultation := consultationAt(time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC))
	svc := NewReminderService(newStubConsultationSource(), &stubNotificationSink{}, time.UTC)

	n := svc.buildReminder(consultation, WindowDayBefore, now)

	assert.Equal(t, "Holnap konzultáció!", n.Title)
	assert.Contains(t, n.Message, "2026. augusztus 25.")
	assert.Contains(t, n.Message, "14:30")
	assert.Equal(t, "/dashboard", n.ActionURL)
}

func TestFormatHungarianDate(t *testing.T) {
	assert.Equal(t, "2026. január 5.", FormatHungarianDate(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025. december 31.", FormatHungarianDate(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestReminderJob_WindowGranularity(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 47, 12, 0, time.UTC)
	svc := NewReminderService(newStubConsultationSource(), &stubNotificationSink{}, time.UTC)

	assert.Equal(t, time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC), svc.DayBeforeJob().Window(now))
	assert.Equal(t, time.Date(2026, 8, 24, 10, 45, 0, 0, time.UTC), svc.HourBeforeJob().Window(now))
}
