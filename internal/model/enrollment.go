package model

import (
	"time"
)

type EnrollmentStatus string

const (
	StatusEnrolled   EnrollmentStatus = "enrolled"
	StatusInProgress EnrollmentStatus = "in_progress"
	StatusCompleted  EnrollmentStatus = "completed"
	StatusDropped    EnrollmentStatus = "dropped"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusEnrolled, StatusInProgress, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// LessonProgress 单个课时的学习进度，嵌入在 TopicProgress 中
type LessonProgress struct {
	LessonID    uint       `json:"lessonId"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	TimeSpent   int        `json:"timeSpent"` // 分钟
	QuizScore   *int       `json:"quizScore,omitempty"`
}

// TopicProgress 单个章节的进度汇总，CompletedAt 首次到达100%时写入且不再清除
type TopicProgress struct {
	TopicID            uint             `json:"topicId"`
	IsCompleted        bool             `json:"isCompleted"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
	ProgressPercentage int              `json:"progressPercentage"`
	LessonsProgress    []LessonProgress `json:"lessonsProgress"`
}

// Enrollment 选课聚合根，(UserID, CourseID) 唯一
// 全部嵌套进度存放在 topics_progress JSON 列中，整行即一致性单元，
// Version 用于乐观并发控制（写入时校验并自增）
// swagger:model
type Enrollment struct {
	BaseModel
	UserID             uint             `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID           uint             `gorm:"uniqueIndex:idx_user_course;not null" json:"courseId"`
	Status             EnrollmentStatus `gorm:"size:20;default:'enrolled';index" json:"status"`
	ProgressPercentage int              `gorm:"default:0" json:"progressPercentage"`
	TopicsProgress     []TopicProgress  `gorm:"type:json;serializer:json" json:"topicsProgress"`
	TotalTimeSpent     int              `gorm:"default:0" json:"totalTimeSpent"` // 分钟
	EnrolledAt         time.Time        `json:"enrolledAt"`
	StartedAt          *time.Time       `json:"startedAt,omitempty"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
	LastAccessedAt     *time.Time       `json:"lastAccessedAt,omitempty"`
	Version            int              `gorm:"default:1" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// TopicProgressFor 返回指定章节的进度条目，没有则返回 nil
func (e *Enrollment) TopicProgressFor(topicID uint) *TopicProgress {
	for i := range e.TopicsProgress {
		if e.TopicsProgress[i].TopicID == topicID {
			return &e.TopicsProgress[i]
		}
	}
	return nil
}

// LessonProgressFor 返回指定章节下指定课时的进度条目，没有则返回 nil
func (e *Enrollment) LessonProgressFor(topicID, lessonID uint) *LessonProgress {
	tp := e.TopicProgressFor(topicID)
	if tp == nil {
		return nil
	}
	return tp.LessonProgressFor(lessonID)
}

func (tp *TopicProgress) LessonProgressFor(lessonID uint) *LessonProgress {
	for i := range tp.LessonsProgress {
		if tp.LessonsProgress[i].LessonID == lessonID {
			return &tp.LessonsProgress[i]
		}
	}
	return nil
}
