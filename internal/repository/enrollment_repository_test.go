package repository

import (
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *EnrollmentRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Enrollment{}))
	return NewEnrollmentRepository(db)
}

func TestCreateDuplicateEnrollment(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(&model.Enrollment{UserID: 1, CourseID: 1, Status: model.StatusEnrolled}))

	err := repo.Create(&model.Enrollment{UserID: 1, CourseID: 1, Status: model.StatusEnrolled})
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	// 换课程或换用户都不冲突
	assert.NoError(t, repo.Create(&model.Enrollment{UserID: 1, CourseID: 2, Status: model.StatusEnrolled}))
	assert.NoError(t, repo.Create(&model.Enrollment{UserID: 2, CourseID: 1, Status: model.StatusEnrolled}))
}

func TestSaveVersionedBumpsVersion(t *testing.T) {
	repo := newTestRepo(t)

	e := &model.Enrollment{UserID: 1, CourseID: 1, Status: model.StatusEnrolled}
	require.NoError(t, repo.Create(e))
	assert.Equal(t, 1, e.Version)

	e.Status = model.StatusInProgress
	e.ProgressPercentage = 40
	require.NoError(t, repo.SaveVersioned(e))
	assert.Equal(t, 2, e.Version)

	got, err := repo.FindByID(e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, 40, got.ProgressPercentage)
	assert.Equal(t, 2, got.Version)
}

func TestSaveVersionedDetectsConflict(t *testing.T) {
	repo := newTestRepo(t)

	seed := &model.Enrollment{UserID: 1, CourseID: 1, Status: model.StatusEnrolled}
	require.NoError(t, repo.Create(seed))

	// 两个写入者读到同一版本
	a, err := repo.FindByUserAndCourse(1, 1)
	require.NoError(t, err)
	b, err := repo.FindByUserAndCourse(1, 1)
	require.NoError(t, err)

	a.ProgressPercentage = 50
	require.NoError(t, repo.SaveVersioned(a))

	// 后到的写入者版本已过期，必须重读后重试
	b.ProgressPercentage = 75
	err = repo.SaveVersioned(b)
	assert.ErrorIs(t, err, util.ErrConcurrencyConflict)

	got, err := repo.FindByID(seed.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.ProgressPercentage)
	assert.Equal(t, 2, got.Version)
}

func TestSaveVersionedPersistsNestedProgress(t *testing.T) {
	repo := newTestRepo(t)

	e := &model.Enrollment{
		UserID:   1,
		CourseID: 1,
		Status:   model.StatusEnrolled,
		TopicsProgress: []model.TopicProgress{
			{TopicID: 10, LessonsProgress: []model.LessonProgress{{LessonID: 100}, {LessonID: 101}}},
		},
	}
	require.NoError(t, repo.Create(e))

	score := 85
	e.TopicsProgress[0].LessonsProgress[0].IsCompleted = true
	e.TopicsProgress[0].LessonsProgress[0].QuizScore = &score
	e.TopicsProgress[0].ProgressPercentage = 50
	require.NoError(t, repo.SaveVersioned(e))

	got, err := repo.FindByID(e.ID)
	require.NoError(t, err)
	tp := got.TopicProgressFor(10)
	require.NotNil(t, tp)
	assert.Equal(t, 50, tp.ProgressPercentage)
	lp := tp.LessonProgressFor(100)
	require.NotNil(t, lp)
	assert.True(t, lp.IsCompleted)
	require.NotNil(t, lp.QuizScore)
	assert.Equal(t, 85, *lp.QuizScore)
	assert.Nil(t, tp.LessonProgressFor(101).QuizScore)
}

func TestFindByCourseInBatches(t *testing.T) {
	repo := newTestRepo(t)

	for userID := uint(1); userID <= 5; userID++ {
		require.NoError(t, repo.Create(&model.Enrollment{UserID: userID, CourseID: 1, Status: model.StatusEnrolled}))
	}
	require.NoError(t, repo.Create(&model.Enrollment{UserID: 1, CourseID: 2, Status: model.StatusEnrolled}))

	var seen int
	var batches int
	err := repo.FindByCourseInBatches(1, 2, func(batch []model.Enrollment) error {
		batches++
		seen += len(batch)
		for _, e := range batch {
			assert.EqualValues(t, 1, e.CourseID)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)
	assert.Equal(t, 3, batches)
}
