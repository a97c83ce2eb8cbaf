package service

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/monitoring"
)

// QuizPassThreshold 及格线：得分达到即判定本课时完成
const QuizPassThreshold = 70

// QuizService 测验评分引擎：按正确选项下标判分，无部分得分。
// 及格结果经进度引擎落盘，避免重复盖完成时间戳。
type QuizService struct {
	CatalogRepo     *repository.CatalogRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	ProgressService *ProgressService
}

func NewQuizService(
	catalogRepo *repository.CatalogRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressService *ProgressService,
) *QuizService {
	return &QuizService{
		CatalogRepo:     catalogRepo,
		EnrollmentRepo:  enrollmentRepo,
		ProgressService: progressService,
	}
}

// QuizAnswerResult 单题判定结果，解析只在提交后返回
type QuizAnswerResult struct {
	Question      string `json:"question"`
	Submitted     int    `json:"submitted"`
	Correct       bool   `json:"correct"`
	CorrectAnswer int    `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// QuizSubmissionResult 整卷评分结果
type QuizSubmissionResult struct {
	Score        int                `json:"score"`
	CorrectCount int                `json:"correctCount"`
	Total        int                `json:"total"`
	Passed       bool               `json:"passed"`
	PerQuestion  []QuizAnswerResult `json:"perQuestion"`
}

// GetLessonQuiz 返回课时测验的投影。
// 教师/管理员或已有提交记录的学生可见答案与解析，其余只见题干和选项。
func (s *QuizService) GetLessonQuiz(userID uint, role model.UserRole, lessonID uint) (interface{}, error) {
	lesson, err := s.CatalogRepo.FindLessonByID(lessonID)
	if err != nil {
		return nil, err
	}
	if !lesson.HasQuiz() {
		return nil, util.ErrNoQuiz
	}

	if role == model.Teacher || role == model.Admin {
		return model.ToPrivilegedQuizQuestions(lesson.Quiz), nil
	}

	topic, err := s.CatalogRepo.FindTopicByID(lesson.TopicID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, topic.CourseID)
	if err != nil {
		return nil, err
	}

	if lp := enrollment.LessonProgressFor(topic.ID, lesson.ID); lp != nil && lp.QuizScore != nil {
		return model.ToPrivilegedQuizQuestions(lesson.Quiz), nil
	}
	return model.ToPublicQuizQuestions(lesson.Quiz), nil
}

// SubmitQuiz 评分并把结果写入进度聚合。
// 及格时转发完成标记，但已有及格分的课时不再重复转发，
// 避免重复盖 CompletedAt；不及格只写分数，不动完成状态。
// 最新一次提交的分数总是覆盖旧值。
func (s *QuizService) SubmitQuiz(userID, lessonID uint, answers []int) (*QuizSubmissionResult, error) {
	lesson, err := s.CatalogRepo.FindLessonByID(lessonID)
	if err != nil {
		return nil, err
	}
	if !lesson.HasQuiz() {
		return nil, util.ErrNoQuiz
	}

	topic, err := s.CatalogRepo.FindTopicByID(lesson.TopicID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, topic.CourseID)
	if err != nil {
		return nil, err
	}

	if len(answers) != len(lesson.Quiz) {
		return nil, util.ErrAnswerCountMismatch
	}

	result := ScoreQuiz(lesson.Quiz, answers)

	delta := LessonProgressDelta{QuizScore: &result.Score}
	if result.Passed && !hasPassingScore(enrollment, topic.ID, lesson.ID) {
		completed := true
		delta.IsCompleted = &completed
	}

	if _, err := s.ProgressService.ApplyLessonProgress(userID, lessonID, delta); err != nil {
		return nil, err
	}

	if result.Passed {
		monitoring.QuizSubmissions.WithLabelValues("passed").Inc()
	} else {
		monitoring.QuizSubmissions.WithLabelValues("failed").Inc()
	}

	return result, nil
}

// ScoreQuiz 纯评分函数：逐题比对正确选项下标，
// score = round(100 × 正确数 / 总题数)
func ScoreQuiz(quiz []model.QuizQuestion, answers []int) *QuizSubmissionResult {
	total := len(quiz)
	correctCount := 0
	perQuestion := make([]QuizAnswerResult, total)

	for i, q := range quiz {
		correct := answers[i] == q.CorrectAnswer
		if correct {
			correctCount++
		}
		perQuestion[i] = QuizAnswerResult{
			Question:      q.Question,
			Submitted:     answers[i],
			Correct:       correct,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}

	score := roundPercent(correctCount, total)
	return &QuizSubmissionResult{
		Score:        score,
		CorrectCount: correctCount,
		Total:        total,
		Passed:       score >= QuizPassThreshold,
		PerQuestion:  perQuestion,
	}
}

func hasPassingScore(e *model.Enrollment, topicID, lessonID uint) bool {
	lp := e.LessonProgressFor(topicID, lessonID)
	return lp != nil && lp.QuizScore != nil && *lp.QuizScore >= QuizPassThreshold
}
