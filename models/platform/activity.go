package platform

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActivityLessonStarted        = "lesson_started"
	ActivityLessonCompleted      = "lesson_completed"
	ActivityQuizTaken            = "quiz_taken"
	ActivityTemplateDownloaded   = "template_downloaded"
	ActivityConsultationAttended = "consultation_attended"
	ActivityModuleCompleted      = "module_completed"
)

// Activity is one entry of the append-only activity log. Immutable once
// written.
type Activity struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id"`
	UserID          string                 `json:"user_id" bson:"user_id"`
	Type            string                 `json:"type" bson:"type"`
	CourseID        string                 `json:"course_id" bson:"course_id"`
	LessonID        string                 `json:"lesson_id,omitempty" bson:"lesson_id,omitempty"`
	ModuleID        string                 `json:"module_id,omitempty" bson:"module_id,omitempty"`
	DurationSeconds int64                  `json:"duration,omitempty" bson:"duration,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Timestamp       time.Time              `json:"timestamp" bson:"timestamp"`
}

func ValidActivityType(t string) bool {
	switch t {
	case ActivityLessonStarted, ActivityLessonCompleted, ActivityQuizTaken,
		ActivityTemplateDownloaded, ActivityConsultationAttended, ActivityModuleCompleted:
		return true
	}
	return false
}
