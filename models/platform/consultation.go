package platform

import (
	"time"
)

const (
	ConsultationScheduled   = "scheduled"
	ConsultationCompleted   = "completed"
	ConsultationCancelled   = "cancelled"
	ConsultationRescheduled = "rescheduled"

	// Reminder states, one per reminder window. The pending -> sent
	// transition is guarded by a compare-and-set update so a reminder goes
	// out at most once per consultation per window.
	ReminderPending = "pending"
	ReminderSent    = "sent"
)

type Consultation struct {
	Base           `json:",inline" bson:",inline"`
	UserID         string         `json:"user_id" bson:"user_id"`
	CourseID       string         `json:"course_id" bson:"course_id"`
	InstructorName string         `json:"instructor_name" bson:"instructor_name"`
	ScheduledAt    time.Time      `json:"scheduled_at" bson:"scheduled_at"`
	Status         string         `json:"status" bson:"status"`
	MeetingLink    string         `json:"meeting_link,omitempty" bson:"meeting_link,omitempty"`
	Reminders      ReminderStates `json:"reminders" bson:"reminders"`
}

type ReminderStates struct {
	DayBefore  string `json:"day_before" bson:"day_before"`
	HourBefore string `json:"hour_before" bson:"hour_before"`
}
