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
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/utils"
)

type ActivityController struct {
	svc *services.ActivityService
}

func NewActivityController(handler *services.ActivityService) *ActivityController {
	return &ActivityController{
		svc: handler,
	}
}

func (ac *ActivityController) Record(ctx *gin.Context) (any, error) {
	req := services.RecordActivityRequest{}
	if err := ctx.BindJSON(&req); err != nil {
		log.Error(ctx).Err(err).Msg("failed to parse activity payload")
		return nil, api.ErrParseBody.WithError(err)
	}
	result, err := ac.svc.Record(ctx, utils.GetUserID(ctx), req)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ac *ActivityController) List(ctx *gin.Context) (any, error) {
	pg := api.Page{}
	if err := ctx.BindQuery(&pg); err != nil {
		return nil, api.ErrParsePaging
	}
	if pg.SortBy == "" || pg.SortBy == "created_at" {
		pg.SortBy = "timestamp"
	}
	userID, _ := ctx.GetQuery(QueryOfUserID)
	activityType, _ := ctx.GetQuery(QueryOfActivityType)
	opts := &api.ListOptions{
		UserSelector: userID,
		TypeSelector: activityType,
	}
	result, err := ac.svc.List(ctx, pg, opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}
