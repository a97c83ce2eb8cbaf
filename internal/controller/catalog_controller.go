package controller

import (
	"strconv"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// @Summary 课程列表
// @Description 分页返回上架课程，精选课程排前
// @Tags 课程目录
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	courses, total, err := c.CatalogService.ListCourses(true, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  courses,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 课程大纲
// @Description 课程的章节与课时结构（不含测验答案）
// @Tags 课程目录
// @Produce json
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/outline [get]
func (c *CatalogController) GetCourseOutline(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	outline, err := c.CatalogService.GetCourseOutline(courseID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, outline)
}

type ReorderRequest struct {
	OrderedIDs []uint `json:"orderedIds" binding:"required"`
}

// @Summary 重排章节
// @Description 用完整的章节 ID 序列重写课程内排序，原子生效
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param body body ReorderRequest true "完整的章节ID序列"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/topics/order [put]
func (c *CatalogController) ReorderTopics(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CatalogService.ReorderTopics(courseID, req.OrderedIDs); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "topics reordered"})
}

// @Summary 重排课时
// @Description 用完整的课时 ID 序列重写章节内排序，原子生效
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param topicId path int true "章节ID"
// @Param body body ReorderRequest true "完整的课时ID序列"
// @Success 200 {object} util.Response
// @Router /api/topics/{topicId}/lessons/order [put]
func (c *CatalogController) ReorderLessons(ctx *gin.Context) {
	topicID := util.MustParseUint(ctx.Param("topicId"))

	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CatalogService.ReorderLessons(topicID, req.OrderedIDs); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "lessons reordered"})
}

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsFeatured  bool   `json:"isFeatured"`
}

// @Summary 创建课程
// @Description 课程标题全局唯一（忽略大小写）
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateCourseRequest true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/courses [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		IsFeatured:  req.IsFeatured,
	}
	if err := c.CatalogService.CreateCourse(course); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, course)
}

type CreateTopicRequest struct {
	Title string `json:"title" binding:"required"`
}

// @Summary 创建章节
// @Description 新章节追加在课程末尾
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param body body CreateTopicRequest true "章节信息"
// @Success 201 {object} util.Response
// @Router /api/courses/{courseId}/topics [post]
func (c *CatalogController) CreateTopic(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	var req CreateTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic := &model.Topic{CourseID: courseID, Title: req.Title, IsActive: true}
	if err := c.CatalogService.CreateTopic(topic); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, topic)
}

type CreateLessonRequest struct {
	Title string               `json:"title" binding:"required"`
	Quiz  []model.QuizQuestion `json:"quiz"`
}

// @Summary 创建课时
// @Description 新课时追加在章节末尾，可同时挂测验题目
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param topicId path int true "章节ID"
// @Param body body CreateLessonRequest true "课时信息"
// @Success 201 {object} util.Response
// @Router /api/topics/{topicId}/lessons [post]
func (c *CatalogController) CreateLesson(ctx *gin.Context) {
	topicID := util.MustParseUint(ctx.Param("topicId"))

	var req CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson := &model.Lesson{TopicID: topicID, Title: req.Title, IsActive: true, Quiz: req.Quiz}
	if err := c.CatalogService.CreateLesson(lesson); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Created(ctx, lesson)
}

// @Summary 删除课程
// @Description 仍有学习进度的课程不可删除
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{courseId} [delete]
func (c *CatalogController) DeleteCourse(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	if err := c.CatalogService.DeleteCourse(courseID); err != nil {
		util.Fail(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "course deleted"})
}
