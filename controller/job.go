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
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/internal/scheduler"
	"github.com/markelira/elira-insight/log"
	"github.com/markelira/elira-insight/utils"
)

// JobController is the administrative escape hatch for running a scheduled
// job outside its cron fire.
type JobController struct {
	sched *scheduler.Scheduler
}

func NewJobController(sched *scheduler.Scheduler) *JobController {
	return &JobController{
		sched: sched,
	}
}

func (jc *JobController) Run(ctx *gin.Context) (any, error) {
	name := ctx.Param(ParamOfJobName)
	if !jc.sched.Has(name) {
		return nil, api.ErrUnsupportedJob.WithMessage(name)
	}
	now := time.Now()
	log.Info(ctx).Str(log.KeyJob, name).Msg("manual job trigger accepted")
	// detach from the request context: an admin trigger should not die
	// with the HTTP connection
	go jc.sched.RunJob(context.Background(), name, now)
	return gin.H{
		"triggered": name,
		"timestamp": utils.Format(now),
	}, nil
}
