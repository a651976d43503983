package scheduler

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/markelira/elira-insight/db"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/models"
)

// RunStore persists job run records.
type RunStore interface {
	Completed(ctx context.Context, job string, window time.Time) (bool, error)
	Begin(ctx context.Context, run *models.JobRun) error
	Finish(ctx context.Context, run *models.JobRun, status, errMsg string, count int)
}

type mongoRunStore struct {
	coll *mongo.Collection
}

func NewRunStore(cli *mongo.Client) RunStore {
	return &mongoRunStore{
		coll: cli.Database(db.GetDatabaseName()).Collection("job_runs"),
	}
}

func (rs *mongoRunStore) Completed(ctx context.Context, job string, window time.Time) (bool, error) {
	query := bson.M{
		"job":          job,
		"window_start": window,
		"status":       models.JobRunSucceeded,
	}
	cnt, err := rs.coll.CountDocuments(ctx, query)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (rs *mongoRunStore) Begin(ctx context.Context, run *models.JobRun) error {
	_, err := rs.coll.InsertOne(ctx, run)
	return err
}

func (rs *mongoRunStore) Finish(ctx context.Context, run *models.JobRun, status, errMsg string, count int) {
	query := bson.M{"_id": run.ID}
	update := bson.M{"$set": bson.M{
		"status":        status,
		"error":         errMsg,
		"finished_at":   time.Now(),
		"notifications": count,
		"updated_at":    time.Now(),
	}}
	if _, err := rs.coll.UpdateOne(ctx, query, update); err != nil {
		log.Error(ctx).Err(err).Str(log.KeyJob, run.Job).Msg("failed to finish job run record")
	}
}
