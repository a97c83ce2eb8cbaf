package service

import (
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
)

// EnrollmentService 选课生命周期：创建聚合、状态直改、删除保护。
// 进度类变更一律走 ProgressService，这里不直接改嵌套进度。
type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CatalogRepo    *repository.CatalogRepository
	Cfg            *config.Config
	Clock          Clock
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	catalogRepo *repository.CatalogRepository,
	cfg *config.Config,
	clock Clock,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CatalogRepo:    catalogRepo,
		Cfg:            cfg,
		Clock:          clock,
	}
}

// CreateEnrollment 为 (user, course) 建立选课聚合。
// 只为选课时处于启用状态的章节和课时建进度条目，全部清零初始化。
func (s *EnrollmentService) CreateEnrollment(userID, courseID uint) (*model.Enrollment, error) {
	ok, err := s.CatalogRepo.CourseExists(courseID, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrCourseUnavailable
	}

	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if err != util.ErrNotEnrolled {
		return nil, err
	}

	topics, err := s.CatalogRepo.GetActiveTopics(courseID)
	if err != nil {
		return nil, err
	}

	topicsProgress := make([]model.TopicProgress, 0, len(topics))
	for _, topic := range topics {
		lessons, err := s.CatalogRepo.GetActiveLessons(topic.ID)
		if err != nil {
			return nil, err
		}
		lessonsProgress := make([]model.LessonProgress, 0, len(lessons))
		for _, lesson := range lessons {
			lessonsProgress = append(lessonsProgress, model.LessonProgress{LessonID: lesson.ID})
		}
		topicsProgress = append(topicsProgress, model.TopicProgress{
			TopicID:         topic.ID,
			LessonsProgress: lessonsProgress,
		})
	}

	enrollment := &model.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		Status:         model.StatusEnrolled,
		TopicsProgress: topicsProgress,
		EnrolledAt:     s.Clock.Now(),
	}

	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}

	logger.Log.Info("enrollment created",
		zap.Uint("userId", userID),
		zap.Uint("courseId", courseID),
		zap.Int("topics", len(topicsProgress)))
	return enrollment, nil
}

func (s *EnrollmentService) GetEnrollment(userID, courseID uint) (*model.Enrollment, error) {
	return s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
}

func (s *EnrollmentService) ListUserEnrollments(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}

// UpdateStatus 管理端直改选课状态。dropped 必须被接受；
// completed 是终态，不允许回退，也不允许绕过进度引擎人为置为 completed。
func (s *EnrollmentService) UpdateStatus(enrollmentID uint, status model.EnrollmentStatus) (*model.Enrollment, error) {
	if !status.Valid() || status == model.StatusCompleted {
		return nil, util.ErrInvalidStatus
	}

	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}

	if enrollment.Status == model.StatusCompleted {
		return nil, util.ErrStatusRegression
	}
	if enrollment.Status == status {
		return enrollment, nil
	}

	enrollment.Status = status
	if err := s.EnrollmentRepo.SaveVersioned(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// DeleteEnrollment 进度超过配置阈值的选课记录禁止删除
func (s *EnrollmentService) DeleteEnrollment(enrollmentID uint) error {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		return err
	}

	if enrollment.ProgressPercentage > s.Cfg.Progress.DeleteMaxProgress {
		return util.ErrEnrollmentHasProgress
	}

	return s.EnrollmentRepo.Delete(enrollment)
}
