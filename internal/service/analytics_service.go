package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnalyticsService 课程维度的群体统计。
// 对选课聚合做分批只读扫描（O(选课数)），结果在 Redis 里做短 TTL 缓存，
// 读到的可能是略旧的快照，调用方需容忍最终一致。
type AnalyticsService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CatalogRepo    *repository.CatalogRepository
	Redis          *redis.Client
	Cfg            *config.Config
}

func NewAnalyticsService(
	enrollmentRepo *repository.EnrollmentRepository,
	catalogRepo *repository.CatalogRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *AnalyticsService {
	return &AnalyticsService{
		EnrollmentRepo: enrollmentRepo,
		CatalogRepo:    catalogRepo,
		Redis:          rdb,
		Cfg:            cfg,
	}
}

const courseAnalyticsKeyPrefix = "course_analytics:"

// 固定的进度分桶，上下界含端点
var progressBuckets = []struct {
	label    string
	min, max int
}{
	{"0-25", 0, 25},
	{"26-50", 26, 50},
	{"51-75", 51, 75},
	{"76-99", 76, 99},
	{"100", 100, 100},
}

// GetCourseAnalytics 返回单门课程的统计聚合，优先命中缓存
func (s *AnalyticsService) GetCourseAnalytics(ctx context.Context, courseID uint) (*model.CourseAnalytics, error) {
	key := fmt.Sprintf("%s%d", courseAnalyticsKeyPrefix, courseID)

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var cached model.CourseAnalytics
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	analytics, err := s.computeCourseAnalytics(courseID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		payload, err := json.Marshal(analytics)
		if err == nil {
			ttl := time.Duration(s.Cfg.Analytics.CacheTTLSeconds) * time.Second
			if err := s.Redis.Set(ctx, key, payload, ttl).Err(); err != nil {
				logger.Log.Warn("failed to cache course analytics",
					zap.Uint("courseId", courseID), zap.Error(err))
			}
		}
	}

	return analytics, nil
}

// RefreshCourseAnalytics 主动重算并回填缓存，后台预热用
func (s *AnalyticsService) RefreshCourseAnalytics(ctx context.Context, courseID uint) error {
	if s.Redis == nil {
		return nil
	}
	key := fmt.Sprintf("%s%d", courseAnalyticsKeyPrefix, courseID)
	s.Redis.Del(ctx, key)
	_, err := s.GetCourseAnalytics(ctx, courseID)
	return err
}

func (s *AnalyticsService) computeCourseAnalytics(courseID uint) (*model.CourseAnalytics, error) {
	if _, err := s.CatalogRepo.FindCourseByID(courseID); err != nil {
		return nil, err
	}

	analytics := &model.CourseAnalytics{
		CourseID:          courseID,
		StatusCounts:      make(map[model.EnrollmentStatus]int64),
		ProgressHistogram: make([]model.ProgressBucket, len(progressBuckets)),
		LessonCompletions: make(map[uint]int64),
	}
	for i, b := range progressBuckets {
		analytics.ProgressHistogram[i] = model.ProgressBucket{Range: b.label}
	}

	var completionDaysSum float64
	var completionSamples int64

	err := s.EnrollmentRepo.FindByCourseInBatches(courseID, s.Cfg.Analytics.ScanBatchSize, func(batch []model.Enrollment) error {
		for i := range batch {
			e := &batch[i]
			analytics.TotalEnrollments++
			analytics.StatusCounts[e.Status]++

			for bi, b := range progressBuckets {
				if e.ProgressPercentage >= b.min && e.ProgressPercentage <= b.max {
					analytics.ProgressHistogram[bi].Count++
					break
				}
			}

			if e.Status == model.StatusCompleted {
				analytics.CompletedCount++
			}
			// 平均完成时长只统计两个时间戳都在的记录
			if e.CompletedAt != nil && !e.EnrolledAt.IsZero() {
				completionDaysSum += e.CompletedAt.Sub(e.EnrolledAt).Hours() / 24
				completionSamples++
			}

			for ti := range e.TopicsProgress {
				for li := range e.TopicsProgress[ti].LessonsProgress {
					lp := &e.TopicsProgress[ti].LessonsProgress[li]
					if lp.IsCompleted {
						analytics.LessonCompletions[lp.LessonID]++
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completionSamples > 0 {
		analytics.AverageCompletionDays = completionDaysSum / float64(completionSamples)
	}

	return analytics, nil
}
