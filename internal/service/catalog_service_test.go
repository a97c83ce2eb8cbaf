package service

import (
	"errors"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func topicIDsInOrder(t *testing.T, env *testEnv, courseID uint) []uint {
	t.Helper()
	topics, err := env.catalog.GetActiveTopics(courseID)
	require.NoError(t, err)
	ids := make([]uint, 0, len(topics))
	for _, topic := range topics {
		ids = append(ids, topic.ID)
	}
	return ids
}

func TestReorderTopics(t *testing.T) {
	env := newTestEnv(t)
	course, topics, _ := env.seedCourse(t, "排序", 1, 1, 1)

	want := []uint{topics[2].ID, topics[0].ID, topics[1].ID}
	require.NoError(t, env.catalogSvc.ReorderTopics(course.ID, want))

	assert.Equal(t, want, topicIDsInOrder(t, env, course.ID))
}

func TestReorderTopicsRejectsBadSets(t *testing.T) {
	env := newTestEnv(t)
	course, topics, _ := env.seedCourse(t, "排序校验", 1, 1, 1)
	a, b, c := topics[0].ID, topics[1].ID, topics[2].ID

	cases := []struct {
		name string
		ids  []uint
		want error
	}{
		{"empty", nil, util.ErrEmptyOrderSet},
		{"missing", []uint{a, b}, util.ErrOrderSetMismatch},
		{"duplicate", []uint{a, b, b}, util.ErrOrderSetMismatch},
		{"foreign", []uint{a, b, 999}, util.ErrOrderSetMismatch},
		{"extra", []uint{a, b, c, 999}, util.ErrOrderSetMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, env.catalogSvc.ReorderTopics(course.ID, tc.ids), tc.want)
		})
	}

	// 排序全部被拒，原有顺序不变
	assert.Equal(t, []uint{a, b, c}, topicIDsInOrder(t, env, course.ID))
}

func TestReorderLessons(t *testing.T) {
	env := newTestEnv(t)
	_, topics, lessons := env.seedCourse(t, "课时排序", 3)
	topicID := topics[0].ID

	want := []uint{lessons[0][1].ID, lessons[0][2].ID, lessons[0][0].ID}
	require.NoError(t, env.catalogSvc.ReorderLessons(topicID, want))

	got, err := env.catalog.GetActiveLessons(topicID)
	require.NoError(t, err)
	gotIDs := make([]uint, 0, len(got))
	for _, l := range got {
		gotIDs = append(gotIDs, l.ID)
	}
	assert.Equal(t, want, gotIDs)

	err = env.catalogSvc.ReorderLessons(topicID, []uint{lessons[0][0].ID})
	assert.ErrorIs(t, err, util.ErrOrderSetMismatch)
}

func TestApplyTopicOrderRollsBackInTransaction(t *testing.T) {
	env := newTestEnv(t)
	course, topics, _ := env.seedCourse(t, "回滚", 1, 1, 1)
	before := topicIDsInOrder(t, env, course.ID)

	boom := errors.New("boom")
	err := env.db.Transaction(func(tx *gorm.DB) error {
		if err := env.catalog.ApplyTopicOrder(tx, course.ID, []uint{topics[2].ID, topics[1].ID, topics[0].ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// 事务失败后下标全部回滚
	assert.Equal(t, before, topicIDsInOrder(t, env, course.ID))
}

func TestGetCourseOutline(t *testing.T) {
	env := newTestEnv(t)
	course, topics, lessons := env.seedCourse(t, "大纲", 2, 1)

	outline, err := env.catalogSvc.GetCourseOutline(course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, outline.Course.ID)
	require.Len(t, outline.Topics, 2)
	assert.Equal(t, topics[0].ID, outline.Topics[0].Topic.ID)
	require.Len(t, outline.Topics[0].Lessons, 2)
	assert.Equal(t, lessons[1][0].ID, outline.Topics[1].Lessons[0].ID)
}

func TestGetCourseOutlineSkipsInactive(t *testing.T) {
	env := newTestEnv(t)
	course, topics, lessons := env.seedCourse(t, "大纲过滤", 2)

	require.NoError(t, env.db.Model(&lessons[0][1]).Update("is_active", false).Error)

	outline, err := env.catalogSvc.GetCourseOutline(course.ID)
	require.NoError(t, err)
	require.Len(t, outline.Topics, 1)
	assert.Equal(t, topics[0].ID, outline.Topics[0].Topic.ID)
	require.Len(t, outline.Topics[0].Lessons, 1)
	assert.Equal(t, lessons[0][0].ID, outline.Topics[0].Lessons[0].ID)
}

func TestGetCourseOutlineNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalogSvc.GetCourseOutline(404)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCreateCourseTitleUnique(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.catalogSvc.CreateCourse(&model.Course{Title: "Go Basics", IsActive: true}))

	// 标题查重忽略大小写
	err := env.catalogSvc.CreateCourse(&model.Course{Title: "go basics", IsActive: true})
	assert.ErrorIs(t, err, util.ErrCourseTitleTaken)

	// 绕过服务层预检直接写库，归一化列的唯一索引兜底
	err = env.catalog.CreateCourse(&model.Course{Title: "GO BASICS", IsActive: true})
	assert.ErrorIs(t, err, util.ErrCourseTitleTaken)

	assert.NoError(t, env.catalogSvc.CreateCourse(&model.Course{Title: "Go Advanced", IsActive: true}))
}

func TestCreateTopicAndLessonAppendAtEnd(t *testing.T) {
	env := newTestEnv(t)
	course, topics, _ := env.seedCourse(t, "追加", 2)

	topic := &model.Topic{CourseID: course.ID, Title: "new topic", IsActive: true}
	require.NoError(t, env.catalogSvc.CreateTopic(topic))
	assert.Equal(t, 1, topic.Order)

	lesson := &model.Lesson{TopicID: topics[0].ID, Title: "new lesson", IsActive: true}
	require.NoError(t, env.catalogSvc.CreateLesson(lesson))
	assert.Equal(t, 2, lesson.Order)

	err := env.catalogSvc.CreateTopic(&model.Topic{CourseID: 404, Title: "ghost"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	err = env.catalogSvc.CreateLesson(&model.Lesson{TopicID: 404, Title: "ghost"})
	assert.ErrorIs(t, err, util.ErrTopicNotFound)
}

func TestDeleteCourse(t *testing.T) {
	env := newTestEnv(t)
	course, _, lessons := env.seedCourse(t, "删课保护", 1)

	_, err := env.enrollment.CreateEnrollment(1, course.ID)
	require.NoError(t, err)
	_, err = env.progress.ApplyLessonProgress(1, lessons[0][0].ID, LessonProgressDelta{IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	// 有学习进度时拒绝删除
	assert.ErrorIs(t, env.catalogSvc.DeleteCourse(course.ID), util.ErrCourseInUse)

	empty, _, _ := env.seedCourse(t, "无人选", 2)
	require.NoError(t, env.catalogSvc.DeleteCourse(empty.ID))

	_, err = env.catalog.FindCourseByID(empty.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	ids, err := env.catalog.ListTopicIDs(empty.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, env.catalogSvc.DeleteCourse(404), util.ErrCourseNotFound)
}

func TestListCourses(t *testing.T) {
	env := newTestEnv(t)
	env.seedCourse(t, "普通课", 1)
	featured, _, _ := env.seedCourse(t, "精选课", 1)
	require.NoError(t, env.db.Model(featured).Update("is_featured", true).Error)
	inactive, _, _ := env.seedCourse(t, "下架课", 1)
	require.NoError(t, env.db.Model(inactive).Update("is_active", false).Error)

	courses, total, err := env.catalogSvc.ListCourses(true, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, courses, 2)
	// 精选课排在前面
	assert.Equal(t, featured.ID, courses[0].ID)

	_, total, err = env.catalogSvc.ListCourses(false, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}
