package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// @Summary 获取课时测验
// @Description 学生提交前只返回题干和选项；教师/管理员或已提交的学生可见答案与解析
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/quiz [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))

	quiz, err := c.QuizService.GetLessonQuiz(user.UserID, user.Role, lessonID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

type SubmitQuizRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// @Summary 提交测验
// @Description 按提交顺序逐题判分，及格（70分）记为课时完成
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Param body body SubmitQuizRequest true "答案下标序列"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/quiz/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitQuiz(user.UserID, lessonID, req.Answers)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, result)
}
