package service

import (
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEnrollmentInitializesProgress(t *testing.T) {
	env := newTestEnv(t)
	course, topics, lessons := env.seedCourse(t, "初始化", 2, 1)

	e, err := env.enrollment.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusEnrolled, e.Status)
	assert.Equal(t, 0, e.ProgressPercentage)
	assert.Equal(t, 0, e.TotalTimeSpent)
	assert.True(t, e.EnrolledAt.Equal(env.clock.Now()))
	assert.Nil(t, e.StartedAt)
	assert.Nil(t, e.CompletedAt)

	require.Len(t, e.TopicsProgress, 2)
	assert.Equal(t, topics[0].ID, e.TopicsProgress[0].TopicID)
	require.Len(t, e.TopicsProgress[0].LessonsProgress, 2)
	assert.Equal(t, lessons[0][0].ID, e.TopicsProgress[0].LessonsProgress[0].LessonID)
	assert.False(t, e.TopicsProgress[0].LessonsProgress[0].IsCompleted)
	require.Len(t, e.TopicsProgress[1].LessonsProgress, 1)
}

func TestCreateEnrollmentSkipsInactiveCatalogEntries(t *testing.T) {
	env := newTestEnv(t)
	course, topics, lessons := env.seedCourse(t, "过滤禁用", 2, 1)
	require.NoError(t, env.db.Model(&lessons[0][1]).Update("is_active", false).Error)
	require.NoError(t, env.db.Model(&topics[1]).Update("is_active", false).Error)

	e, err := env.enrollment.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	require.Len(t, e.TopicsProgress, 1)
	assert.Equal(t, topics[0].ID, e.TopicsProgress[0].TopicID)
	require.Len(t, e.TopicsProgress[0].LessonsProgress, 1)
	assert.Equal(t, lessons[0][0].ID, e.TopicsProgress[0].LessonsProgress[0].LessonID)
}

func TestCreateEnrollmentDuplicate(t *testing.T) {
	env := newTestEnv(t)
	course, _, _ := env.seedCourse(t, "重复选课", 1)

	_, err := env.enrollment.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	_, err = env.enrollment.CreateEnrollment(1, course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	// 其他用户不受影响
	_, err = env.enrollment.CreateEnrollment(2, course.ID)
	assert.NoError(t, err)
}

func TestCreateEnrollmentCourseUnavailable(t *testing.T) {
	env := newTestEnv(t)
	course, _, _ := env.seedCourse(t, "下架不可选", 1)
	require.NoError(t, env.db.Model(course).Update("is_active", false).Error)

	_, err := env.enrollment.CreateEnrollment(1, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseUnavailable)

	_, err = env.enrollment.CreateEnrollment(1, 404)
	assert.ErrorIs(t, err, util.ErrCourseUnavailable)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	course, _, _ := env.seedCourse(t, "状态直改", 1)

	e, err := env.enrollment.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	got, err := env.enrollment.UpdateStatus(e.ID, model.StatusDropped)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDropped, got.Status)

	_, err = env.enrollment.UpdateStatus(e.ID, "paused")
	assert.ErrorIs(t, err, util.ErrInvalidStatus)

	// completed 只能由进度引擎产生
	_, err = env.enrollment.UpdateStatus(e.ID, model.StatusCompleted)
	assert.ErrorIs(t, err, util.ErrInvalidStatus)

	_, err = env.enrollment.UpdateStatus(404, model.StatusDropped)
	assert.ErrorIs(t, err, util.ErrEnrollmentNotFound)
}

func TestUpdateStatusCompletedIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	course, _, lessons := env.seedCourse(t, "终态", 1)

	e, err := env.enrollment.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	_, err = env.progress.ApplyLessonProgress(1, lessons[0][0].ID, LessonProgressDelta{IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	_, err = env.enrollment.UpdateStatus(e.ID, model.StatusDropped)
	assert.ErrorIs(t, err, util.ErrStatusRegression)
}

func TestDeleteEnrollment(t *testing.T) {
	env := newTestEnv(t)
	course, _, lessons := env.seedCourse(t, "删除保护", 2)

	e, err := env.enrollment.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	require.NoError(t, env.enrollment.DeleteEnrollment(e.ID))
	_, err = env.enrollment.GetEnrollment(1, course.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	// 有进度的记录禁止删除
	e, err = env.enrollment.CreateEnrollment(1, course.ID)
	require.NoError(t, err)
	_, err = env.progress.ApplyLessonProgress(1, lessons[0][0].ID, LessonProgressDelta{IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	err = env.enrollment.DeleteEnrollment(e.ID)
	assert.ErrorIs(t, err, util.ErrEnrollmentHasProgress)
}

func TestListUserEnrollments(t *testing.T) {
	env := newTestEnv(t)
	c1, _, _ := env.seedCourse(t, "列表一", 1)
	c2, _, _ := env.seedCourse(t, "列表二", 1)

	_, err := env.enrollment.CreateEnrollment(1, c1.ID)
	require.NoError(t, err)
	_, err = env.enrollment.CreateEnrollment(1, c2.ID)
	require.NoError(t, err)
	_, err = env.enrollment.CreateEnrollment(2, c1.ID)
	require.NoError(t, err)

	list, err := env.enrollment.ListUserEnrollments(1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
