// Copyright 2024 Elira Kft.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/internal/services"
	"github.com/markelira/elira-insight/utils"
)

type NotificationController struct {
	svc *services.NotificationService
}

func NewNotificationController(handler *services.NotificationService) *NotificationController {
	return &NotificationController{
		svc: handler,
	}
}

func (nc *NotificationController) List(ctx *gin.Context) (any, error) {
	pg := api.Page{}
	if err := ctx.BindQuery(&pg); err != nil {
		return nil, api.ErrParsePaging
	}
	unread, _ := ctx.GetQuery(QueryOfUnreadOnly)
	opts := &api.ListOptions{
		UnreadOnly: unread == "true",
	}
	result, err := nc.svc.List(ctx, utils.GetUserID(ctx), pg, opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (nc *NotificationController) MarkRead(ctx *gin.Context) (any, error) {
	id := ctx.Param(ParamOfNotificationID)
	if id == "" {
		return nil, api.ErrParseResourceID
	}
	if err := nc.svc.MarkRead(ctx, utils.GetUserID(ctx), id); err != nil {
		return nil, err
	}
	return gin.H{"read": true}, nil
}
