package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 课程统计
// @Description 单门课程的选课状态分布、进度直方图、平均完成时长与课时完成数
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/analytics [get]
func (c *AnalyticsController) GetCourseAnalytics(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	analytics, err := c.AnalyticsService.GetCourseAnalytics(ctx.Request.Context(), courseID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, analytics)
}
