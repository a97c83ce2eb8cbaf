package util

import (
	"errors"
	"net/http"
)

var (
	// 校验类错误：输入本身不合法，不重试
	ErrAnswerCountMismatch = errors.New("答案数量与题目数量不一致")
	ErrEmptyOrderSet       = errors.New("排序列表不能为空")
	ErrInvalidStatus       = errors.New("非法的选课状态")

	// 一致性错误：目录与进度聚合出现漂移，直接上报不做静默修复
	ErrNotEnrolled          = errors.New("用户未选修该课程")
	ErrTopicProgressMissing = errors.New("选课进度中缺少该章节")
	ErrOrderSetMismatch     = errors.New("排序列表与现有子项集合不一致")

	// 业务规则
	ErrAlreadyEnrolled       = errors.New("已选修该课程")
	ErrCourseUnavailable     = errors.New("课程不存在或已下架")
	ErrNoQuiz                = errors.New("该课时没有测验")
	ErrStatusRegression      = errors.New("已完成的选课状态不可回退")
	ErrEnrollmentHasProgress = errors.New("存在学习进度的选课记录不可删除")
	ErrCourseTitleTaken      = errors.New("课程标题已存在")
	ErrCourseInUse           = errors.New("仍有学习进度的课程不可删除")

	// 引用类错误
	ErrCourseNotFound     = errors.New("课程不存在")
	ErrTopicNotFound      = errors.New("章节不存在")
	ErrLessonNotFound     = errors.New("课时不存在")
	ErrEnrollmentNotFound = errors.New("选课记录不存在")
	ErrUserNotFound       = errors.New("用户不存在")

	// 并发冲突：内部有限重试后仍失败才会抛给调用方
	ErrConcurrencyConflict = errors.New("并发更新冲突，请重试")

	ErrEmailRegistered = errors.New("该邮箱已被注册")
	ErrUnauthorized    = errors.New("unauthorized")
)

// ErrorKind 返回稳定的机器可读错误码，供响应体携带
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrAnswerCountMismatch):
		return "AnswerCountMismatch"
	case errors.Is(err, ErrEmptyOrderSet):
		return "EmptyOrderSet"
	case errors.Is(err, ErrInvalidStatus):
		return "InvalidStatus"
	case errors.Is(err, ErrNotEnrolled):
		return "NotEnrolled"
	case errors.Is(err, ErrTopicProgressMissing):
		return "TopicProgressMissing"
	case errors.Is(err, ErrOrderSetMismatch):
		return "OrderSetMismatch"
	case errors.Is(err, ErrAlreadyEnrolled):
		return "AlreadyEnrolled"
	case errors.Is(err, ErrCourseUnavailable):
		return "CourseUnavailable"
	case errors.Is(err, ErrNoQuiz):
		return "NoQuiz"
	case errors.Is(err, ErrStatusRegression):
		return "StatusRegression"
	case errors.Is(err, ErrEnrollmentHasProgress):
		return "EnrollmentHasProgress"
	case errors.Is(err, ErrCourseTitleTaken):
		return "CourseTitleTaken"
	case errors.Is(err, ErrCourseInUse):
		return "CourseInUse"
	case errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrTopicNotFound),
		errors.Is(err, ErrLessonNotFound),
		errors.Is(err, ErrEnrollmentNotFound),
		errors.Is(err, ErrUserNotFound):
		return "NotFound"
	case errors.Is(err, ErrConcurrencyConflict):
		return "ConcurrencyConflict"
	case errors.Is(err, ErrEmailRegistered):
		return "EmailRegistered"
	default:
		return "Internal"
	}
}

// ErrorStatus 把错误映射为 HTTP 状态码
func ErrorStatus(err error) int {
	switch ErrorKind(err) {
	case "AnswerCountMismatch", "EmptyOrderSet", "InvalidStatus":
		return http.StatusBadRequest
	case "NotEnrolled", "TopicProgressMissing", "OrderSetMismatch",
		"AlreadyEnrolled", "CourseUnavailable", "NoQuiz",
		"StatusRegression", "EnrollmentHasProgress", "EmailRegistered",
		"CourseTitleTaken", "CourseInUse":
		return http.StatusConflict
	case "NotFound":
		return http.StatusNotFound
	case "ConcurrencyConflict":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
