package repository

import (
	"errors"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// CatalogRepository 课程目录（课程/章节/课时）的数据访问。
// 进度引擎只读目录；排序重写和级联删除要求调用方传入事务。
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// CreateCourse 并发创建同名课程时由 title_normalized 唯一索引兜底
func (r *CatalogRepository) CreateCourse(course *model.Course) error {
	err := r.DB.Create(course).Error
	if err != nil && isDuplicateKey(err) {
		return util.ErrCourseTitleTaken
	}
	return err
}

func (r *CatalogRepository) CreateTopic(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

func (r *CatalogRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *CatalogRepository) FindCourseByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return &course, err
}

func (r *CatalogRepository) FindTopicByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	err := r.DB.First(&topic, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTopicNotFound
	}
	return &topic, err
}

func (r *CatalogRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	return &lesson, err
}

// CourseExists 课程是否存在（mustBeActive 时还要求处于上架状态）
func (r *CatalogRepository) CourseExists(id uint, mustBeActive bool) (bool, error) {
	query := r.DB.Model(&model.Course{}).Where("id = ?", id)
	if mustBeActive {
		query = query.Where("is_active = ?", true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CourseTitleTaken 标题全局唯一校验（不区分大小写），
// 走归一化列的索引而不是逐行 LOWER
func (r *CatalogRepository) CourseTitleTaken(title string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).
		Where("title_normalized = ? AND id <> ?", strings.ToLower(title), excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *CatalogRepository) ListCourses(activeOnly bool, page, limit int) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := query.Order("is_featured DESC, id ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CatalogRepository) ListFeaturedCourseIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Course{}).
		Where("is_featured = ? AND is_active = ?", true, true).
		Pluck("id", &ids).Error
	return ids, err
}

// GetActiveTopics 按排序字段返回课程下的启用章节
func (r *CatalogRepository) GetActiveTopics(courseID uint) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.Where("course_id = ? AND is_active = ?", courseID, true).
		Order("sort_order ASC").
		Find(&topics).Error
	return topics, err
}

// GetActiveLessons 按排序字段返回章节下的启用课时
func (r *CatalogRepository) GetActiveLessons(topicID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("topic_id = ? AND is_active = ?", topicID, true).
		Order("sort_order ASC").
		Find(&lessons).Error
	return lessons, err
}

// ListTopicIDs 课程下全部章节 ID（含停用，排序校验要求精确集合）
func (r *CatalogRepository) ListTopicIDs(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Topic{}).
		Where("course_id = ?", courseID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *CatalogRepository) ListLessonIDs(topicID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Lesson{}).
		Where("topic_id = ?", topicID).
		Pluck("id", &ids).Error
	return ids, err
}

// ApplyTopicOrder 在给定事务内把章节排序重写为列表下标。
// 必须运行在调用方开启的事务中，任一行未命中即返回错误触发回滚。
func (r *CatalogRepository) ApplyTopicOrder(tx *gorm.DB, courseID uint, orderedIDs []uint) error {
	for idx, id := range orderedIDs {
		res := tx.Model(&model.Topic{}).
			Where("id = ? AND course_id = ?", id, courseID).
			Update("sort_order", idx)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrOrderSetMismatch
		}
	}
	return nil
}

// ApplyLessonOrder 同 ApplyTopicOrder，作用于课时
func (r *CatalogRepository) ApplyLessonOrder(tx *gorm.DB, topicID uint, orderedIDs []uint) error {
	for idx, id := range orderedIDs {
		res := tx.Model(&model.Lesson{}).
			Where("id = ? AND topic_id = ?", id, topicID).
			Update("sort_order", idx)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrOrderSetMismatch
		}
	}
	return nil
}

// DeleteCourse 在给定事务内物理删除课程及其全部章节和课时。
// 删除保护（是否仍有学习进度）由服务层先行校验；
// 软删除的行会占住标题唯一索引，挡住同名课程重建，所以不走软删除。
func (r *CatalogRepository) DeleteCourse(tx *gorm.DB, courseID uint) error {
	var topicIDs []uint
	if err := tx.Model(&model.Topic{}).
		Where("course_id = ?", courseID).
		Pluck("id", &topicIDs).Error; err != nil {
		return err
	}

	if len(topicIDs) > 0 {
		if err := tx.Unscoped().Where("topic_id IN ?", topicIDs).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&model.Topic{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&model.Course{}, courseID).Error
}
