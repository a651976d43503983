package utils

import (
	"context"

	"github.com/markelira/elira-insight/constant"
)

func GetUserID(ctx context.Context) string {
	val := ctx.Value(constant.ContextUserID)
	if val == nil {
		return "system"
	}
	return val.(string)
}

func GetUserRole(ctx context.Context) string {
	val := ctx.Value(constant.ContextUserRole)
	if val == nil {
		return ""
	}
	return val.(string)
}
