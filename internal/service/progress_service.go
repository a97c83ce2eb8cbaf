package service

import (
	"errors"
	"math"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// ProgressService 进度重算引擎：接收课时级别的增量，
// 级联重算章节和选课级别的百分比与完成标记，整行原子回写。
type ProgressService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CatalogRepo    *repository.CatalogRepository
	Cfg            *config.Config
	Clock          Clock
}

func NewProgressService(
	enrollmentRepo *repository.EnrollmentRepository,
	catalogRepo *repository.CatalogRepository,
	cfg *config.Config,
	clock Clock,
) *ProgressService {
	return &ProgressService{
		EnrollmentRepo: enrollmentRepo,
		CatalogRepo:    catalogRepo,
		Cfg:            cfg,
		Clock:          clock,
	}
}

// LessonProgressDelta 一次课时级别的进度变更
type LessonProgressDelta struct {
	IsCompleted    *bool `json:"isCompleted"`
	TimeSpentDelta *int  `json:"timeSpentDelta"`
	QuizScore      *int  `json:"-"`
}

// ProgressResult 返回给调用方的课时与章节进度快照
type ProgressResult struct {
	LessonProgress model.LessonProgress `json:"lessonProgress"`
	TopicProgress  model.TopicProgress  `json:"topicProgress"`
}

// ApplyLessonProgress 对 (user, lesson) 应用一次进度增量。
// 乐观锁冲突时重读聚合、重放增量，最多尝试 Cfg.Progress.WriteAttempts 次。
func (s *ProgressService) ApplyLessonProgress(userID, lessonID uint, delta LessonProgressDelta) (*ProgressResult, error) {
	lesson, err := s.CatalogRepo.FindLessonByID(lessonID)
	if err != nil {
		return nil, err
	}
	topic, err := s.CatalogRepo.FindTopicByID(lesson.TopicID)
	if err != nil {
		return nil, err
	}

	attempts := s.Cfg.Progress.WriteAttempts
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			monitoring.ProgressConflictRetries.Inc()
			time.Sleep(time.Duration(10<<attempt) * time.Millisecond)
		}

		enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, topic.CourseID)
		if err != nil {
			return nil, err
		}

		result, err := s.applyDelta(enrollment, topic.ID, lesson.ID, delta)
		if err != nil {
			return nil, err
		}

		if err := s.EnrollmentRepo.SaveVersioned(enrollment); err != nil {
			if errors.Is(err, util.ErrConcurrencyConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		monitoring.ProgressUpdates.Inc()
		return result, nil
	}

	logger.Log.Warn("enrollment write lost optimistic-lock race repeatedly",
		zap.Uint("userId", userID),
		zap.Uint("lessonId", lessonID),
		zap.Int("attempts", attempts))
	return nil, lastErr
}

// applyDelta 把增量落到内存中的聚合上并完成全部级联重算。
// 纯内存变更，保存由调用方负责。
func (s *ProgressService) applyDelta(e *model.Enrollment, topicID, lessonID uint, delta LessonProgressDelta) (*ProgressResult, error) {
	now := s.Clock.Now()

	tp := e.TopicProgressFor(topicID)
	if tp == nil {
		// 选课早于章节创建，目录与聚合漂移，必须上报而不是静默补齐
		return nil, util.ErrTopicProgressMissing
	}

	lp := tp.LessonProgressFor(lessonID)
	if lp == nil {
		// 课时存在但条目缺失：初始化本应建好，这里防御性补建
		tp.LessonsProgress = append(tp.LessonsProgress, model.LessonProgress{LessonID: lessonID})
		lp = &tp.LessonsProgress[len(tp.LessonsProgress)-1]
	}

	if delta.IsCompleted != nil {
		if *delta.IsCompleted && lp.CompletedAt == nil {
			lp.CompletedAt = &now
		}
		// CompletedAt 单向闩锁：取消完成不清除首次完成时间
		lp.IsCompleted = *delta.IsCompleted
	}

	if delta.TimeSpentDelta != nil {
		lp.TimeSpent += *delta.TimeSpentDelta
		e.TotalTimeSpent += *delta.TimeSpentDelta
	}

	if delta.QuizScore != nil {
		score := *delta.QuizScore
		lp.QuizScore = &score
	}

	recomputeTopic(tp, now)
	recomputeEnrollment(e, now)

	if e.StartedAt == nil {
		e.StartedAt = &now
	}
	if e.Status == model.StatusEnrolled {
		e.Status = model.StatusInProgress
	}
	if e.ProgressPercentage == 100 && e.Status != model.StatusCompleted {
		e.Status = model.StatusCompleted
		if e.CompletedAt == nil {
			e.CompletedAt = &now
		}
	}
	e.LastAccessedAt = &now

	return &ProgressResult{LessonProgress: *lp, TopicProgress: *tp}, nil
}

// recomputeTopic 章节百分比 = round(100 × 完成课时数 / 课时总数)，
// 无课时时为 0；isCompleted 与 100% 严格互为充要条件
func recomputeTopic(tp *model.TopicProgress, now time.Time) {
	total := len(tp.LessonsProgress)
	if total == 0 {
		tp.ProgressPercentage = 0
		tp.IsCompleted = false
		return
	}

	completed := 0
	for i := range tp.LessonsProgress {
		if tp.LessonsProgress[i].IsCompleted {
			completed++
		}
	}

	tp.ProgressPercentage = roundPercent(completed, total)
	wasCompleted := tp.IsCompleted
	tp.IsCompleted = tp.ProgressPercentage == 100
	if tp.IsCompleted && !wasCompleted && tp.CompletedAt == nil {
		tp.CompletedAt = &now
	}
}

// recomputeEnrollment 选课百分比 = round(各章节百分比的均值)，无章节时为 0
func recomputeEnrollment(e *model.Enrollment, _ time.Time) {
	n := len(e.TopicsProgress)
	if n == 0 {
		e.ProgressPercentage = 0
		return
	}

	sum := 0
	for i := range e.TopicsProgress {
		sum += e.TopicsProgress[i].ProgressPercentage
	}
	e.ProgressPercentage = int(math.Round(float64(sum) / float64(n)))
}

// roundPercent 四舍五入（半值远离零）的百分比
func roundPercent(part, total int) int {
	return int(math.Round(100 * float64(part) / float64(total)))
}
