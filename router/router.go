package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/markelira/elira-insight/api"
	"github.com/markelira/elira-insight/controller"
	"github.com/markelira/elira-insight/log"
)

func RegisterActivitiesRouter(group *gin.RouterGroup, admin gin.HandlerFunc,
	ctrl *controller.ActivityController) {
	wrapRouterGroup(group, http.MethodPost, "", ctrl.Record)
	group.Handle(http.MethodGet, "", admin, wrapHandlerFunc(ctrl.List))
}

func RegisterNotificationsRouter(group *gin.RouterGroup,
	ctrl *controller.NotificationController) {
	wrapRouterGroup(group, http.MethodGet, "", ctrl.List)

	pathID := fmt.Sprintf("/:%s/read", controller.ParamOfNotificationID)
	wrapRouterGroup(group, http.MethodPost, pathID, ctrl.MarkRead)
}

func RegisterJobsRouter(group *gin.RouterGroup,
	ctrl *controller.JobController) {
	pathName := fmt.Sprintf("/:%s/run", controller.ParamOfJobName)
	wrapRouterGroup(group, http.MethodPost, pathName, ctrl.Run)
}

func RegisterReportsRouter(group *gin.RouterGroup,
	ctrl *controller.ReportController) {
	pathID := fmt.Sprintf("/company/:%s", controller.ParamOfCompanyID)
	wrapRouterGroup(group, http.MethodPost, pathID, ctrl.Generate)
}

type HandlerFunc func(ctx *gin.Context) (any, error)

func wrapHandlerFunc(f HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		resp, err := f(ctx)
		if err != nil {
			log.Info(ctx).Err(err).Str("path", ctx.Request.URL.Path).Msg("request has error")
			api.ResponseWithError(ctx, err)
			return
		}
		api.ResponseWithSuccess(ctx, resp)
	}
}

func wrapRouterGroup(group *gin.RouterGroup, method, relativePath string, f HandlerFunc) {
	group.Handle(method, relativePath, wrapHandlerFunc(f))
}
