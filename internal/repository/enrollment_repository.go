package repository

import (
	"errors"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// EnrollmentRepository 选课聚合的数据访问。
// 聚合整行是一致性单元：除 Create/Delete 外唯一的写入口是
// SaveVersioned，它带乐观锁校验，防止并发写互相覆盖。
type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	if e.Version == 0 {
		e.Version = 1
	}
	err := r.DB.Create(e).Error
	if err != nil && isDuplicateKey(err) {
		return util.ErrAlreadyEnrolled
	}
	return err
}

// 并发创建同一 (user, course) 时靠唯一索引兜底
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrEnrollmentNotFound
	}
	return &e, err
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotEnrolled
	}
	return &e, err
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Order("enrolled_at DESC").Find(&list).Error
	return list, err
}

// SaveVersioned 带版本校验地回写整个聚合。
// WHERE 带上读取时的版本号，没有命中说明别的写入者先到，
// 返回 ErrConcurrencyConflict 由上层重读重算后重试；
// 成功时把内存里的版本号同步推进。
// 必须用结构体而不是 map 传值：topics_progress 依赖字段上的
// json 序列化器，map 更新不会触发它。
func (r *EnrollmentRepository) SaveVersioned(e *model.Enrollment) error {
	current := e.Version
	res := r.DB.Model(&model.Enrollment{}).
		Where("id = ? AND version = ?", e.ID, current).
		Select("status", "progress_percentage", "topics_progress",
			"total_time_spent", "started_at", "completed_at",
			"last_accessed_at", "version").
		Updates(model.Enrollment{
			Status:             e.Status,
			ProgressPercentage: e.ProgressPercentage,
			TopicsProgress:     e.TopicsProgress,
			TotalTimeSpent:     e.TotalTimeSpent,
			StartedAt:          e.StartedAt,
			CompletedAt:        e.CompletedAt,
			LastAccessedAt:     e.LastAccessedAt,
			Version:            current + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrConcurrencyConflict
	}
	e.Version = current + 1
	return nil
}

// Delete 物理删除。软删除的行仍占住 (user_id, course_id) 唯一索引，
// 会挡住之后的重新选课，所以这里用 Unscoped。
func (r *EnrollmentRepository) Delete(e *model.Enrollment) error {
	return r.DB.Unscoped().Delete(e).Error
}

// FindByCourseInBatches 分批扫描某课程的全部选课记录，供统计聚合使用。
// 只读，容忍与并发写之间的快照漂移。
func (r *EnrollmentRepository) FindByCourseInBatches(courseID uint, batchSize int, fn func(batch []model.Enrollment) error) error {
	var batch []model.Enrollment
	return r.DB.Where("course_id = ?", courseID).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}

// HasProgressOverThreshold 课程/章节/课时的停用-删除保护要用到：
// 只要还有进度超过阈值的选课记录，就拒绝物理删除目录实体。
func (r *EnrollmentRepository) HasProgressOverThreshold(courseID uint, threshold int) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ? AND progress_percentage > ?", courseID, threshold).
		Count(&count).Error
	return count > 0, err
}
