package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/utils"
)

const (
	connectTimeout = 10 * time.Second
)

var databaseName string

type Config struct {
	Address  string `yaml:"address"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (c Config) URI() string {
	if c.Username == "" {
		return fmt.Sprintf("mongodb://%s", c.Address)
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s", c.Username, c.Password, c.Address)
}

func Init(ctx context.Context, cfg Config) (*mongo.Client, error) {
	databaseName = cfg.Database
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, err
	}
	err = utils.WaitFor(3, 2, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return cli.Ping(pingCtx, readpref.Primary())
	})
	if err != nil {
		return nil, err
	}
	return cli, nil
}

func GetDatabaseName() string {
	return databaseName
}

func HandleDBError(err error) error {
	if err == nil {
		return nil
	}
	if err == mongo.ErrNoDocuments {
		return api.ErrResourceNotFound
	}
	return api.ErrInternal.WithError(err)
}
