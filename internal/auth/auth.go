package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/constant"
	"github.com/markelira/elira-insight/db"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/models/platform"
	"github.com/markelira/elira-insight/utils"
)

type Config struct {
	Secret string `yaml:"secret"`
}

// RoleLookup resolves a user id to its stored role.
type RoleLookup interface {
	Role(ctx context.Context, uid string) (string, error)
}

type mongoRoleLookup struct {
	userColl *mongo.Collection
}

func NewRoleLookup(cli *mongo.Client) RoleLookup {
	return &mongoRoleLookup{
		userColl: cli.Database(db.GetDatabaseName()).Collection("users"),
	}
}

func (rl *mongoRoleLookup) Role(ctx context.Context, uid string) (string, error) {
	result := rl.userColl.FindOne(ctx, bson.M{"uid": uid})
	if result.Err() != nil {
		return "", db.HandleDBError(result.Err())
	}
	user := &platform.User{}
	if err := result.Decode(user); err != nil {
		return "", db.HandleDBError(err)
	}
	return user.Role, nil
}

// Middleware verifies the bearer token and stashes the caller's identity
// and role on the request context.
type Middleware struct {
	cfg   Config
	roles RoleLookup
}

func NewMiddleware(cfg Config, roles RoleLookup) *Middleware {
	return &Middleware{cfg: cfg, roles: roles}
}

func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uid, err := m.verify(ctx.GetHeader("Authorization"))
		if err != nil {
			log.Warn(ctx).Err(err).Msg("rejected request with invalid bearer token")
			api.ResponseWithError(ctx, api.ErrUnauthorized)
			ctx.Abort()
			return
		}
		role, err := m.roles.Role(ctx, uid)
		if err != nil {
			log.Warn(ctx).Err(err).Msg("failed to resolve role for token subject")
			api.ResponseWithError(ctx, api.ErrUnauthorized)
			ctx.Abort()
			return
		}
		ctx.Set(constant.ContextUserID, uid)
		ctx.Set(constant.ContextUserRole, role)
		ctx.Next()
	}
}

// RequireAdmin gates the administrative escape hatches: valid token but a
// non-admin role is a 403, not a 401.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if utils.GetUserRole(ctx) != constant.RoleAdmin {
			api.ResponseWithError(ctx, api.ErrForbidden)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func (m *Middleware) verify(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", jwt.ErrTokenMalformed
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(m.cfg.Secret), nil
	})
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenRequiredClaimMissing
	}
	return sub, nil
}
