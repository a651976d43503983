package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markelira/elira-insight/db"
	"github.com/markelira/elira-insight/models"
	"github.com/markelira/elira-insight/models/platform"
)

// ProgressSource streams active progress records. The result set is
// unbounded, so consumers see one record at a time off the cursor instead
// of a materialized slice.
type ProgressSource interface {
	EachActive(ctx context.Context, since time.Time, fn func(*platform.Progress) error) error
}

// ActivitySource reads the append-only activity log for one user inside a
// time window. includeEnd selects a closed upper bound; the weekly job uses
// it for the current week and leaves the previous week half-open.
type ActivitySource interface {
	ListBetween(ctx context.Context, userID string, start, end time.Time, includeEnd bool) ([]*platform.Activity, error)
}

// NotificationSink commits derived notifications. Upserts are keyed on the
// deterministic _id, so replaying a window rewrites instead of duplicating.
type NotificationSink interface {
	BulkUpsert(ctx context.Context, notifications []*models.Notification) error
}

// ConsultationSource reads upcoming consultations and owns the guarded
// pending -> sent reminder transition.
type ConsultationSource interface {
	ListScheduled(ctx context.Context, windowStart, windowEnd time.Time) ([]*platform.Consultation, error)
	MarkReminderSent(ctx context.Context, id interface{}, window string) (bool, error)
}

// UserDirectory resolves recipient addresses for optional email delivery.
type UserDirectory interface {
	Lookup(ctx context.Context, uid string) (*platform.User, error)
}

type mongoStores struct {
	progressColl     *mongo.Collection
	activityColl     *mongo.Collection
	notificationColl *mongo.Collection
	consultationColl *mongo.Collection
	userColl         *mongo.Collection
}

// NewStores binds the job store interfaces to the mongo collections.
func NewStores(cli *mongo.Client) *mongoStores {
	return &mongoStores{
		progressColl:     cli.Database(db.GetDatabaseName()).Collection("user_progress"),
		activityColl:     cli.Database(db.GetDatabaseName()).Collection("activities"),
		notificationColl: cli.Database(db.GetDatabaseName()).Collection("notifications"),
		consultationColl: cli.Database(db.GetDatabaseName()).Collection("consultations"),
		userColl:         cli.Database(db.GetDatabaseName()).Collection("users"),
	}
}

func (s *mongoStores) EachActive(ctx context.Context, since time.Time, fn func(*platform.Progress) error) error {
	query := bson.M{
		"last_activity_at": bson.M{"$gte": since},
	}
	opt := options.FindOptions{
		Sort: bson.M{"last_activity_at": -1},
	}
	cursor, err := s.progressColl.Find(ctx, query, &opt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil
		}
		return err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	for cursor.Next(ctx) {
		progress := &platform.Progress{}
		if err = cursor.Decode(progress); err != nil {
			return err
		}
		if err = fn(progress); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (s *mongoStores) ListBetween(ctx context.Context, userID string, start, end time.Time, includeEnd bool) ([]*platform.Activity, error) {
	bounds := bson.M{"$gte": start, "$lt": end}
	if includeEnd {
		bounds = bson.M{"$gte": start, "$lte": end}
	}
	query := bson.M{
		"user_id":   userID,
		"timestamp": bounds,
	}
	cursor, err := s.activityColl.Find(ctx, query)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return []*platform.Activity{}, nil
		}
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	activities := make([]*platform.Activity, 0)
	for cursor.Next(ctx) {
		activity := &platform.Activity{}
		if err = cursor.Decode(activity); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, cursor.Err()
}

func (s *mongoStores) BulkUpsert(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	wms := make([]mongo.WriteModel, 0, len(notifications))
	for _, n := range notifications {
		wms = append(wms, notificationUpsertModel(n))
	}
	opts := options.BulkWrite().SetOrdered(false)
	_, err := s.notificationColl.BulkWrite(ctx, wms, opts)
	return err
}

// notificationUpsertModel rewrites the content fields but leaves read and
// created_at alone on existing documents, so replaying a window never
// un-reads a notification the user already saw.
func notificationUpsertModel(n *models.Notification) *mongo.UpdateOneModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": n.ID}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"user_id":     n.UserID,
				"type":        n.Type,
				"title":       n.Title,
				"message":     n.Message,
				"priority":    n.Priority,
				"action_url":  n.ActionURL,
				"action_text": n.ActionText,
				"metadata":    n.Metadata,
			},
			"$setOnInsert": bson.M{
				"read":       n.Read,
				"created_at": n.CreatedAt,
			},
		}).
		SetUpsert(true)
}

func (s *mongoStores) ListScheduled(ctx context.Context, windowStart, windowEnd time.Time) ([]*platform.Consultation, error) {
	query := bson.M{
		"status": platform.ConsultationScheduled,
		"scheduled_at": bson.M{
			"$gte": windowStart,
			"$lte": windowEnd,
		},
	}
	cursor, err := s.consultationColl.Find(ctx, query)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return []*platform.Consultation{}, nil
		}
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	consultations := make([]*platform.Consultation, 0)
	for cursor.Next(ctx) {
		consultation := &platform.Consultation{}
		if err = cursor.Decode(consultation); err != nil {
			return nil, err
		}
		consultations = append(consultations, consultation)
	}
	return consultations, cursor.Err()
}

// MarkReminderSent performs the pending -> sent transition for one reminder
// window. The state is part of the filter, so only one caller ever wins.
func (s *mongoStores) MarkReminderSent(ctx context.Context, id interface{}, window string) (bool, error) {
	field := "reminders." + window
	query := bson.M{
		"_id": id,
		field: bson.M{"$ne": platform.ReminderSent},
	}
	update := bson.M{"$set": bson.M{
		field:        platform.ReminderSent,
		"updated_at": time.Now(),
	}}
	result, err := s.consultationColl.UpdateOne(ctx, query, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (s *mongoStores) Lookup(ctx context.Context, uid string) (*platform.User, error) {
	result := s.userColl.FindOne(ctx, bson.M{"uid": uid})
	if result.Err() != nil {
		return nil, db.HandleDBError(result.Err())
	}
	user := &platform.User{}
	if err := result.Decode(user); err != nil {
		return nil, db.HandleDBError(err)
	}
	return user, nil
}
