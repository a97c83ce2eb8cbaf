package service

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService 目录维护、读取与排序事务管理。
// 排序以课时/章节的 ID 为进度关联键，重排不触碰任何选课聚合。
type CatalogService struct {
	CatalogRepo    *repository.CatalogRepository
	EnrollmentRepo *repository.EnrollmentRepository
	DB             *gorm.DB
}

func NewCatalogService(
	catalogRepo *repository.CatalogRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	db *gorm.DB,
) *CatalogService {
	return &CatalogService{
		CatalogRepo:    catalogRepo,
		EnrollmentRepo: enrollmentRepo,
		DB:             db,
	}
}

// CreateCourse 课程标题全局唯一，忽略大小写
func (s *CatalogService) CreateCourse(course *model.Course) error {
	taken, err := s.CatalogRepo.CourseTitleTaken(course.Title, 0)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrCourseTitleTaken
	}
	return s.CatalogRepo.CreateCourse(course)
}

// CreateTopic 新章节排在课程末尾
func (s *CatalogService) CreateTopic(topic *model.Topic) error {
	ok, err := s.CatalogRepo.CourseExists(topic.CourseID, false)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrCourseNotFound
	}

	ids, err := s.CatalogRepo.ListTopicIDs(topic.CourseID)
	if err != nil {
		return err
	}
	topic.Order = len(ids)
	return s.CatalogRepo.CreateTopic(topic)
}

// CreateLesson 新课时排在章节末尾
func (s *CatalogService) CreateLesson(lesson *model.Lesson) error {
	if _, err := s.CatalogRepo.FindTopicByID(lesson.TopicID); err != nil {
		return err
	}

	ids, err := s.CatalogRepo.ListLessonIDs(lesson.TopicID)
	if err != nil {
		return err
	}
	lesson.Order = len(ids)
	return s.CatalogRepo.CreateLesson(lesson)
}

// DeleteCourse 只要还有进度非零的选课记录就拒绝删除，
// 通过的删除在单个事务里连同章节和课时一起移除
func (s *CatalogService) DeleteCourse(courseID uint) error {
	if _, err := s.CatalogRepo.FindCourseByID(courseID); err != nil {
		return err
	}

	inUse, err := s.EnrollmentRepo.HasProgressOverThreshold(courseID, 0)
	if err != nil {
		return err
	}
	if inUse {
		return util.ErrCourseInUse
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CatalogRepo.DeleteCourse(tx, courseID)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("course deleted", zap.Uint("courseId", courseID))
	return nil
}

func (s *CatalogService) ListCourses(activeOnly bool, page, limit int) ([]model.Course, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.CatalogRepo.ListCourses(activeOnly, page, limit)
}

// CourseOutline 课程大纲：启用章节与各自的启用课时（不含测验答案）
type CourseOutline struct {
	Course model.Course   `json:"course"`
	Topics []OutlineTopic `json:"topics"`
}

type OutlineTopic struct {
	Topic   model.Topic    `json:"topic"`
	Lessons []model.Lesson `json:"lessons"`
}

func (s *CatalogService) GetCourseOutline(courseID uint) (*CourseOutline, error) {
	course, err := s.CatalogRepo.FindCourseByID(courseID)
	if err != nil {
		return nil, err
	}

	topics, err := s.CatalogRepo.GetActiveTopics(courseID)
	if err != nil {
		return nil, err
	}

	outline := &CourseOutline{Course: *course, Topics: make([]OutlineTopic, 0, len(topics))}
	for _, topic := range topics {
		lessons, err := s.CatalogRepo.GetActiveLessons(topic.ID)
		if err != nil {
			return nil, err
		}
		outline.Topics = append(outline.Topics, OutlineTopic{Topic: topic, Lessons: lessons})
	}
	return outline, nil
}

// ReorderTopics 用完整的章节 ID 序列重写课程内排序。
// 序列必须与课程现有章节集合完全一致，否则整体拒绝；
// 下标赋值放在单个事务里，要么全部生效要么全部回滚。
func (s *CatalogService) ReorderTopics(courseID uint, orderedIDs []uint) error {
	existing, err := s.CatalogRepo.ListTopicIDs(courseID)
	if err != nil {
		return err
	}
	if err := validateOrderSet(existing, orderedIDs); err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CatalogRepo.ApplyTopicOrder(tx, courseID, orderedIDs)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("topics reordered",
		zap.Uint("courseId", courseID),
		zap.Int("count", len(orderedIDs)))
	return nil
}

// ReorderLessons 同 ReorderTopics，作用于章节内的课时
func (s *CatalogService) ReorderLessons(topicID uint, orderedIDs []uint) error {
	existing, err := s.CatalogRepo.ListLessonIDs(topicID)
	if err != nil {
		return err
	}
	if err := validateOrderSet(existing, orderedIDs); err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CatalogRepo.ApplyLessonOrder(tx, topicID, orderedIDs)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("lessons reordered",
		zap.Uint("topicId", topicID),
		zap.Int("count", len(orderedIDs)))
	return nil
}

// validateOrderSet 提交的 ID 序列必须恰好是现有子项集合：
// 数量一致、无重复、无缺失、无多余
func validateOrderSet(existing, supplied []uint) error {
	if len(supplied) == 0 {
		return util.ErrEmptyOrderSet
	}
	if len(supplied) != len(existing) {
		return util.ErrOrderSetMismatch
	}

	seen := make(map[uint]bool, len(supplied))
	for _, id := range supplied {
		if seen[id] {
			return util.ErrOrderSetMismatch
		}
		seen[id] = true
	}
	for _, id := range existing {
		if !seen[id] {
			return util.ErrOrderSetMismatch
		}
	}
	return nil
}
