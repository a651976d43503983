package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationTypeSystem               = "system"
	NotificationTypeConsultationReminder = "consultation_reminder"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// notificationNamespace seeds deterministic notification ids. Never change
// it: the insight job relies on (user, week) mapping to a stable _id so
// re-running a window upserts instead of duplicating.
var notificationNamespace = uuid.MustParse("b6a0e761-3f0e-4f2a-9c61-5e1d2a6b8f41")

// Notification is the derived per-user document consumed by the client
// notification UI. The insight and reminder jobs are the only writers.
type Notification struct {
	ID         string                 `json:"id" bson:"_id"`
	UserID     string                 `json:"user_id" bson:"user_id"`
	Type       string                 `json:"type" bson:"type"`
	Title      string                 `json:"title" bson:"title"`
	Message    string                 `json:"message" bson:"message"`
	Priority   string                 `json:"priority" bson:"priority"`
	Read       bool                   `json:"read" bson:"read"`
	ActionURL  string                 `json:"action_url" bson:"action_url"`
	ActionText string                 `json:"action_text" bson:"action_text"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
}

// InsightNotificationID derives the identity of a weekly insight from the
// user and the week start date, so one (user, week) pair owns exactly one
// document.
func InsightNotificationID(userID, weekStartDate string) string {
	return uuid.NewSHA1(notificationNamespace, []byte(userID+"/"+weekStartDate)).String()
}

// ReminderNotificationID pins one reminder notification per consultation
// per window.
func ReminderNotificationID(consultationID, window string) string {
	return uuid.NewSHA1(notificationNamespace, []byte(consultationID+"/"+window)).String()
}

// InsightMetadata is the metadata payload of a weekly insight notification.
type InsightMetadata struct {
	WeeklyInsight        bool     `json:"weekly_insight" bson:"weekly_insight"`
	ThisWeekLearningTime int64    `json:"this_week_learning_time" bson:"this_week_learning_time"`
	LastWeekLearningTime int64    `json:"last_week_learning_time" bson:"last_week_learning_time"`
	PercentageChange     int      `json:"percentage_change" bson:"percentage_change"`
	Trend                string   `json:"trend" bson:"trend"`
	LessonsCompleted     int      `json:"lessons_completed" bson:"lessons_completed"`
	Recommendations      []string `json:"recommendations" bson:"recommendations"`
}
