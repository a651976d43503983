package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/db"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/models"
)

// NotificationService is the consumer-facing read side of the notification
// collection the jobs write into.
type NotificationService struct {
	cli              *mongo.Client
	notificationColl *mongo.Collection
}

func NewNotificationService(cli *mongo.Client) *NotificationService {
	return &NotificationService{
		cli:              cli,
		notificationColl: cli.Database(db.GetDatabaseName()).Collection("notifications"),
	}
}

func (ns *NotificationService) Start() error {
	return nil
}

func (ns *NotificationService) Stop() error {
	return nil
}

type NotificationList struct {
	List   []*models.Notification `json:"list"`
	Unread int64                  `json:"unread"`
	P      api.Page               `json:"page"`
}

// List returns the caller's notifications newest first with the unread
// count for the badge.
func (ns *NotificationService) List(ctx context.Context, userID string, pg api.Page, opts *api.ListOptions) (*NotificationList, error) {
	var (
		skip  = pg.PageNumber * pg.PageSize
		limit = pg.PageSize
	)
	if skip < 0 {
		skip = 0
	}

	query := bson.M{"user_id": userID}
	if opts != nil && opts.UnreadOnly {
		query["read"] = false
	}
	cnt, err := ns.notificationColl.CountDocuments(ctx, query)
	if err != nil {
		return nil, db.HandleDBError(err)
	}
	unread, err := ns.notificationColl.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return nil, db.HandleDBError(err)
	}
	pg.Total = cnt
	if cnt == 0 {
		return &NotificationList{
			List:   []*models.Notification{},
			Unread: 0,
			P:      pg,
		}, nil
	}
	if cnt <= skip {
		return nil, api.ErrPageArgumentsTooLarge
	}

	opt := options.FindOptions{
		Limit: &limit,
		Skip:  &skip,
		Sort:  bson.M{"created_at": -1},
	}
	cursor, err := ns.notificationColl.Find(ctx, query, &opt)
	if err != nil {
		return nil, db.HandleDBError(err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*models.Notification, 0, limit)
	for cursor.Next(ctx) {
		notification := &models.Notification{}
		if err = cursor.Decode(notification); err != nil {
			return nil, db.HandleDBError(err)
		}
		list = append(list, notification)
	}
	return &NotificationList{
		List:   list,
		Unread: unread,
		P:      pg,
	}, nil
}

// MarkRead flips one of the caller's notifications to read. Marking an
// already-read notification is a no-op, not an error.
func (ns *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	query := bson.M{
		"_id":     notificationID,
		"user_id": userID,
	}
	update := bson.M{"$set": bson.M{"read": true}}
	result, err := ns.notificationColl.UpdateOne(ctx, query, update)
	if err != nil {
		return db.HandleDBError(err)
	}
	if result.MatchedCount == 0 {
		log.Warn(ctx).Str(log.KeyNotification, notificationID).Msg("mark read matched no notification for caller")
		return api.ErrResourceNotFound
	}
	return nil
}
