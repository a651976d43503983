package platform

import (
	"time"
)

// Progress is the per-user learning progress record, created at signup and
// mutated only by activity ingestion. total_learning_time_seconds is
// monotonic non-decreasing; longest_streak >= current_streak.
type Progress struct {
	Base                     `json:",inline" bson:",inline"`
	UserID                   string    `json:"user_id" bson:"user_id"`
	TotalCoursesEnrolled     int       `json:"total_courses_enrolled" bson:"total_courses_enrolled"`
	CompletedCourses         int       `json:"completed_courses" bson:"completed_courses"`
	TotalLearningTimeSeconds int64     `json:"total_learning_time_seconds" bson:"total_learning_time_seconds"`
	LastActivityAt           time.Time `json:"last_activity_at" bson:"last_activity_at"`
	CurrentStreak            int       `json:"current_streak" bson:"current_streak"`
	LongestStreak            int       `json:"longest_streak" bson:"longest_streak"`
}
