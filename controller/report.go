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
)

type ReportController struct {
	svc *services.ReportService
}

func NewReportController(handler *services.ReportService) *ReportController {
	return &ReportController{
		svc: handler,
	}
}

func (rc *ReportController) Generate(ctx *gin.Context) (any, error) {
	companyID := ctx.Param(ParamOfCompanyID)
	if companyID == "" {
		return nil, api.ErrParseResourceID
	}
	result, err := rc.svc.Generate(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return result, nil
}
