package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	ProgressService   *service.ProgressService
}

func NewEnrollmentController(
	enrollmentService *service.EnrollmentService,
	progressService *service.ProgressService,
) *EnrollmentController {
	return &EnrollmentController{
		EnrollmentService: enrollmentService,
		ProgressService:   progressService,
	}
}

// @Summary 选课
// @Description 为当前用户创建课程的选课聚合
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 201 {object} util.Response
// @Router /api/courses/{courseId}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("courseId"))

	enrollment, err := c.EnrollmentService.CreateEnrollment(user.UserID, courseID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, enrollment)
}

// @Summary 我的选课列表
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListMyEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.EnrollmentService.ListUserEnrollments(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}

// @Summary 查询课程选课详情
// @Description 当前用户在指定课程下的完整进度聚合
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/enrollment [get]
func (c *EnrollmentController) GetMyEnrollment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("courseId"))

	enrollment, err := c.EnrollmentService.GetEnrollment(user.UserID, courseID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

// @Summary 更新课时进度
// @Description 应用一次课时级进度增量并级联重算
// @Tags 选课
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Param body body service.LessonProgressDelta true "进度增量"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/progress [post]
func (c *EnrollmentController) ApplyLessonProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))

	var delta service.LessonProgressDelta
	if err := ctx.ShouldBindJSON(&delta); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.ApplyLessonProgress(user.UserID, lessonID, delta)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type UpdateStatusRequest struct {
	Status model.EnrollmentStatus `json:"status" binding:"required"`
}

// @Summary 更新选课状态
// @Description 管理端直改选课状态（dropped 等），completed 不可回退
// @Tags 选课
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param enrollmentId path int true "选课ID"
// @Param body body UpdateStatusRequest true "目标状态"
// @Success 200 {object} util.Response
// @Router /api/admin/enrollments/{enrollmentId}/status [patch]
func (c *EnrollmentController) UpdateStatus(ctx *gin.Context) {
	enrollmentID := util.MustParseUint(ctx.Param("enrollmentId"))

	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.EnrollmentService.UpdateStatus(enrollmentID, req.Status)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

// @Summary 删除选课记录
// @Description 进度超过阈值的选课记录禁止删除
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param enrollmentId path int true "选课ID"
// @Success 200 {object} util.Response
// @Router /api/admin/enrollments/{enrollmentId} [delete]
func (c *EnrollmentController) Delete(ctx *gin.Context) {
	enrollmentID := util.MustParseUint(ctx.Param("enrollmentId"))

	if err := c.EnrollmentService.DeleteEnrollment(enrollmentID); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "enrollment deleted"})
}
