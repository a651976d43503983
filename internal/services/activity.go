package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/db"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/models/platform"
	"github.com/markelira/elira-insight/utils"
)

// ActivityService appends activity log entries and keeps the caller's
// progress record in step: learning time, last activity and the daily
// streak counters.
type ActivityService struct {
	cli          *mongo.Client
	activityColl *mongo.Collection
	progressColl *mongo.Collection
	location     *time.Location
}

func NewActivityService(cli *mongo.Client, loc *time.Location) *ActivityService {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityService{
		cli:          cli,
		activityColl: cli.Database(db.GetDatabaseName()).Collection("activities"),
		progressColl: cli.Database(db.GetDatabaseName()).Collection("user_progress"),
		location:     loc,
	}
}

func (as *ActivityService) Start() error {
	return nil
}

func (as *ActivityService) Stop() error {
	return nil
}

type RecordActivityRequest struct {
	Type            string                 `json:"type"`
	CourseID        string                 `json:"course_id"`
	LessonID        string                 `json:"lesson_id"`
	ModuleID        string                 `json:"module_id"`
	DurationSeconds int64                  `json:"duration"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// Record appends one immutable activity entry, then folds it into the
// user's progress record.
func (as *ActivityService) Record(ctx context.Context, userID string, req RecordActivityRequest) (*platform.Activity, error) {
	if !platform.ValidActivityType(req.Type) {
		return nil, api.ErrUnsupportedActivityType
	}
	if req.CourseID == "" {
		return nil, api.ErrInvalidMissingParameter.WithMessage("course_id is required")
	}
	if req.DurationSeconds < 0 {
		return nil, api.ErrInvalidParameter.WithMessage("duration must not be negative")
	}

	now := time.Now()
	activity := &platform.Activity{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Type:            req.Type,
		CourseID:        req.CourseID,
		LessonID:        req.LessonID,
		ModuleID:        req.ModuleID,
		DurationSeconds: req.DurationSeconds,
		Metadata:        utils.MapCopy(req.Metadata),
		Timestamp:       now,
	}
	if _, err := as.activityColl.InsertOne(ctx, activity); err != nil {
		return nil, db.HandleDBError(err)
	}
	if err := as.applyToProgress(ctx, userID, activity, now); err != nil {
		// the log entry is already durable; progress converges on the
		// next activity
		log.Error(ctx).Err(err).Msg("failed to fold activity into progress record")
		return nil, err
	}
	return activity, nil
}

func (as *ActivityService) applyToProgress(ctx context.Context, userID string, activity *platform.Activity, now time.Time) error {
	result := as.progressColl.FindOne(ctx, bson.M{"user_id": userID})
	if result.Err() == mongo.ErrNoDocuments {
		progress := &platform.Progress{
			Base:                     platform.NewBase(ctx),
			UserID:                   userID,
			TotalLearningTimeSeconds: activity.DurationSeconds,
			LastActivityAt:           now,
			CurrentStreak:            1,
			LongestStreak:            1,
		}
		_, err := as.progressColl.InsertOne(ctx, progress)
		return db.HandleDBError(err)
	}
	if result.Err() != nil {
		return db.HandleDBError(result.Err())
	}
	progress := &platform.Progress{}
	if err := result.Decode(progress); err != nil {
		return db.HandleDBError(err)
	}

	current, longest := NextStreak(progress.CurrentStreak, progress.LongestStreak, progress.LastActivityAt, now, as.location)
	update := bson.M{
		"$set": bson.M{
			"last_activity_at": now,
			"current_streak":   current,
			"longest_streak":   longest,
			"updated_at":       now,
		},
		"$inc": bson.M{
			"total_learning_time_seconds": activity.DurationSeconds,
		},
	}
	_, err := as.progressColl.UpdateOne(ctx, bson.M{"_id": progress.ID}, update)
	return db.HandleDBError(err)
}

// NextStreak applies the consecutive-day rule: activity on the same day
// keeps the streak, on the next day extends it, after a gap resets it to 1.
// longest never decreases and always covers current.
func NextStreak(current, longest int, last, now time.Time, loc *time.Location) (int, int) {
	switch {
	case current == 0:
		current = 1
	case utils.SameDay(last, now, loc):
		// no change
	case utils.IsNextDay(last, now, loc):
		current++
	default:
		current = 1
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

// List is the administrative activity log view.
func (as *ActivityService) List(ctx context.Context, pg api.Page, opts *api.ListOptions) (*api.ListResult, error) {
	var (
		skip  = pg.PageNumber * pg.PageSize
		limit = pg.PageSize
		sort  bson.M
	)
	if skip < 0 {
		skip = 0
	}

	query := bson.M{}
	if opts != nil && opts.UserSelector != "" {
		query["user_id"] = opts.UserSelector
	}
	if opts != nil && opts.TypeSelector != "" {
		query["type"] = opts.TypeSelector
	}
	cnt, err := as.activityColl.CountDocuments(ctx, query)
	if err != nil {
		return nil, db.HandleDBError(err)
	}
	if cnt == 0 {
		return &api.ListResult{
			List: []interface{}{},
			P:    pg,
		}, nil
	}
	if cnt <= skip {
		return nil, api.ErrPageArgumentsTooLarge
	}

	pg.Total = cnt
	if pg.Direction == "asc" {
		sort = bson.M{pg.SortBy: 1}
	} else {
		sort = bson.M{pg.SortBy: -1}
	}

	opt := options.FindOptions{
		Limit: &limit,
		Skip:  &skip,
		Sort:  sort,
	}
	cursor, err := as.activityColl.Find(ctx, query, &opt)
	if err != nil {
		return nil, db.HandleDBError(err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]interface{}, 0, limit)
	for cursor.Next(ctx) {
		activity := &platform.Activity{}
		if err = cursor.Decode(activity); err != nil {
			return nil, db.HandleDBError(err)
		}
		list = append(list, activity)
	}
	return &api.ListResult{
		List: list,
		P:    pg,
	}, nil
}
