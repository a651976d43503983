package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/config"
	"github.com/markelira/elira-insight/db"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/models"
	"github.com/markelira/elira-insight/models/platform"
	"github.com/markelira/elira-insight/utils"
)

const (
	atRiskAfter = 14 * utils.Day
)

var csvHeader = []string{
	"user_id", "name", "email", "job_title",
	"completed_courses", "total_courses_enrolled", "progress_percent",
	"learning_time", "last_activity_at", "status",
}

// ReportService renders per-employee engagement CSVs for company admins
// and parks them in S3.
type ReportService struct {
	cfg          config.S3
	cli          *mongo.Client
	userColl     *mongo.Collection
	progressColl *mongo.Collection
	reportColl   *mongo.Collection
}

func NewReportService(cfg config.S3, cli *mongo.Client) *ReportService {
	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AWSAccessKeyID)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.AWSSecretAccessKey)
	return &ReportService{
		cfg:          cfg,
		cli:          cli,
		userColl:     cli.Database(db.GetDatabaseName()).Collection("users"),
		progressColl: cli.Database(db.GetDatabaseName()).Collection("user_progress"),
		reportColl:   cli.Database(db.GetDatabaseName()).Collection("company_reports"),
	}
}

func (rs *ReportService) Start() error {
	return nil
}

func (rs *ReportService) Stop() error {
	return nil
}

// Generate collects every employee of the company, classifies their
// engagement and uploads the CSV. Employees without a progress record are
// reported as not-started rather than skipped.
func (rs *ReportService) Generate(ctx context.Context, companyID string) (*models.CompanyReport, error) {
	if companyID == "" {
		return nil, api.ErrInvalidMissingParameter.WithMessage("company_id is required")
	}
	now := time.Now()

	cursor, err := rs.userColl.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, db.HandleDBError(err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	rows := make([]*models.EmployeeProgress, 0)
	for cursor.Next(ctx) {
		user := &platform.User{}
		if err = cursor.Decode(user); err != nil {
			return nil, db.HandleDBError(err)
		}
		progress := &platform.Progress{}
		result := rs.progressColl.FindOne(ctx, bson.M{"user_id": user.UID})
		if result.Err() == mongo.ErrNoDocuments {
			progress = nil
		} else if result.Err() != nil {
			return nil, db.HandleDBError(result.Err())
		} else if err = result.Decode(progress); err != nil {
			return nil, db.HandleDBError(err)
		}
		rows = append(rows, BuildEmployeeRow(user, progress, now))
	}
	if err = cursor.Err(); err != nil {
		return nil, db.HandleDBError(err)
	}
	if len(rows) == 0 {
		return nil, api.ErrResourceNotFound.WithMessage("company has no employees")
	}

	data, err := RenderCSV(rows)
	if err != nil {
		return nil, api.ErrInternal.WithError(err)
	}
	key := fmt.Sprintf("company-reports/%s/%s.csv", companyID, now.Format("2006-01-02T15-04-05"))
	if err = rs.upload(ctx, key, data); err != nil {
		return nil, api.ErrInternal.WithError(err)
	}

	report := &models.CompanyReport{
		Base:      platform.NewBase(ctx),
		CompanyID: companyID,
		ObjectKey: key,
		Rows:      len(rows),
		Stats:     SummarizeRows(rows),
	}
	if _, err = rs.reportColl.InsertOne(ctx, report); err != nil {
		return nil, db.HandleDBError(err)
	}
	log.Info(ctx).Str(log.KeyCompany, companyID).Msgf("generated company report with %d rows at %s\n", len(rows), key)
	return report, nil
}

// BuildEmployeeRow classifies one employee. nil progress means the
// employee never produced any activity.
func BuildEmployeeRow(user *platform.User, progress *platform.Progress, now time.Time) *models.EmployeeProgress {
	row := &models.EmployeeProgress{
		UserID:   user.UID,
		Name:     fmt.Sprintf("%s %s", user.FamilyName, user.GivenName),
		Email:    user.Email,
		JobTitle: user.JobTitle,
		Status:   models.EmployeeNotStarted,
	}
	if progress == nil {
		return row
	}
	row.CompletedCourses = progress.CompletedCourses
	row.TotalCoursesEnrolled = progress.TotalCoursesEnrolled
	row.LearningTimeSeconds = progress.TotalLearningTimeSeconds
	row.LastActivityAt = progress.LastActivityAt
	if progress.TotalCoursesEnrolled > 0 {
		row.ProgressPercent = utils.RoundPercent(100 * float64(progress.CompletedCourses) / float64(progress.TotalCoursesEnrolled))
	}
	switch {
	case progress.TotalCoursesEnrolled > 0 && progress.CompletedCourses >= progress.TotalCoursesEnrolled:
		row.Status = models.EmployeeCompleted
	case progress.LastActivityAt.IsZero():
		row.Status = models.EmployeeNotStarted
	case now.Sub(progress.LastActivityAt) > atRiskAfter:
		row.Status = models.EmployeeAtRisk
	default:
		row.Status = models.EmployeeActive
	}
	return row
}

// RenderCSV writes the report rows with a fixed header order.
func RenderCSV(rows []*models.EmployeeProgress) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		lastActivity := ""
		if !row.LastActivityAt.IsZero() {
			lastActivity = utils.Format(row.LastActivityAt)
		}
		record := []string{
			row.UserID,
			row.Name,
			row.Email,
			row.JobTitle,
			strconv.Itoa(row.CompletedCourses),
			strconv.Itoa(row.TotalCoursesEnrolled),
			strconv.Itoa(row.ProgressPercent),
			utils.FormatLearningTime(row.LearningTimeSeconds),
			lastActivity,
			row.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func SummarizeRows(rows []*models.EmployeeProgress) models.ReportStats {
	stats := models.ReportStats{
		TotalEmployees: len(rows),
	}
	if len(rows) == 0 {
		return stats
	}
	totalProgress := 0
	for _, row := range rows {
		totalProgress += row.ProgressPercent
		switch row.Status {
		case models.EmployeeActive:
			stats.ActiveEmployees++
		case models.EmployeeAtRisk:
			stats.AtRiskCount++
		case models.EmployeeCompleted:
			stats.CompletedCount++
		}
	}
	stats.AverageProgress = totalProgress / len(rows)
	return stats
}

func (rs *ReportService) upload(ctx context.Context, key string, data []byte) error {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:      aws.String(rs.cfg.Region),
		Credentials: credentials.NewEnvCredentials(),
	}))
	uploader := s3manager.NewUploader(sess)
	_, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(rs.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	return err
}
