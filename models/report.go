package models

import (
	"time"

	"github.com/markelira/elira-insight/models/platform"
)

const (
	EmployeeActive     = "active"
	EmployeeAtRisk     = "at-risk"
	EmployeeCompleted  = "completed"
	EmployeeNotStarted = "not-started"
)

// EmployeeProgress is one CSV row of a company engagement report.
type EmployeeProgress struct {
	UserID               string    `json:"user_id" bson:"user_id"`
	Name                 string    `json:"name" bson:"name"`
	Email                string    `json:"email" bson:"email"`
	JobTitle             string    `json:"job_title" bson:"job_title"`
	CompletedCourses     int       `json:"completed_courses" bson:"completed_courses"`
	TotalCoursesEnrolled int       `json:"total_courses_enrolled" bson:"total_courses_enrolled"`
	ProgressPercent      int       `json:"progress_percent" bson:"progress_percent"`
	LearningTimeSeconds  int64     `json:"learning_time_seconds" bson:"learning_time_seconds"`
	LastActivityAt       time.Time `json:"last_activity_at" bson:"last_activity_at"`
	Status               string    `json:"status" bson:"status"`
}

type ReportStats struct {
	TotalEmployees  int `json:"total_employees" bson:"total_employees"`
	ActiveEmployees int `json:"active_employees" bson:"active_employees"`
	AtRiskCount     int `json:"at_risk_count" bson:"at_risk_count"`
	CompletedCount  int `json:"completed_count" bson:"completed_count"`
	AverageProgress int `json:"average_progress" bson:"average_progress"`
}

// CompanyReport records one generated CSV export and where it lives in S3.
type CompanyReport struct {
	platform.Base `json:",inline" bson:",inline"`
	CompanyID     string      `json:"company_id" bson:"company_id"`
	ObjectKey     string      `json:"object_key" bson:"object_key"`
	Rows          int         `json:"rows" bson:"rows"`
	Stats         ReportStats `json:"stats" bson:"stats"`
}
