package service

import (
	"testing"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fixedClock 固定时钟，Advance 推进后续时间戳
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFixedClock() *fixedClock {
	return &fixedClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Log = zap.NewNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Course{},
		&model.Topic{},
		&model.Lesson{},
		&model.Enrollment{},
	))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWT:       config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Progress:  config.ProgressConfig{WriteAttempts: 3, DeleteMaxProgress: 0},
		Analytics: config.AnalyticsConfig{CacheTTLSeconds: 60, ScanBatchSize: 100},
	}
}

type testEnv struct {
	db         *gorm.DB
	clock      *fixedClock
	cfg        *config.Config
	catalog    *repository.CatalogRepository
	enrollRepo *repository.EnrollmentRepository
	enrollment *EnrollmentService
	progress   *ProgressService
	quiz       *QuizService
	catalogSvc *CatalogService
	analytics  *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	clock := newFixedClock()
	cfg := newTestConfig()

	catalogRepo := repository.NewCatalogRepository(db)
	enrollRepo := repository.NewEnrollmentRepository(db)
	progress := NewProgressService(enrollRepo, catalogRepo, cfg, clock)

	return &testEnv{
		db:         db,
		clock:      clock,
		cfg:        cfg,
		catalog:    catalogRepo,
		enrollRepo: enrollRepo,
		enrollment: NewEnrollmentService(enrollRepo, catalogRepo, cfg, clock),
		progress:   progress,
		quiz:       NewQuizService(catalogRepo, enrollRepo, progress),
		catalogSvc: NewCatalogService(catalogRepo, enrollRepo, db),
		analytics:  NewAnalyticsService(enrollRepo, catalogRepo, nil, cfg),
	}
}

// seedCourse 建一门课：每个元素代表一个章节，值是该章节的课时数
func (env *testEnv) seedCourse(t *testing.T, title string, lessonsPerTopic ...int) (*model.Course, []model.Topic, [][]model.Lesson) {
	t.Helper()

	course := &model.Course{Title: title, IsActive: true}
	require.NoError(t, env.catalog.CreateCourse(course))

	topics := make([]model.Topic, 0, len(lessonsPerTopic))
	lessons := make([][]model.Lesson, 0, len(lessonsPerTopic))
	for ti, n := range lessonsPerTopic {
		topic := model.Topic{CourseID: course.ID, Title: title + " topic", Order: ti, IsActive: true}
		require.NoError(t, env.catalog.CreateTopic(&topic))

		topicLessons := make([]model.Lesson, 0, n)
		for li := 0; li < n; li++ {
			lesson := model.Lesson{TopicID: topic.ID, Title: "lesson", Order: li, IsActive: true}
			require.NoError(t, env.catalog.CreateLesson(&lesson))
			topicLessons = append(topicLessons, lesson)
		}
		topics = append(topics, topic)
		lessons = append(lessons, topicLessons)
	}
	return course, topics, lessons
}

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }
