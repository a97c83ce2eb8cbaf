package model

import (
	"strings"

	"gorm.io/gorm"
)

// Course 课程目录的顶层实体，评分汇总由评价流程维护，这里只读。
// 标题唯一性忽略大小写，唯一索引落在归一化列上，
// 并发创建同名课程时由索引兜底。
// swagger:model
type Course struct {
	BaseModel
	Title           string  `gorm:"size:255;not null" json:"title"`
	TitleNormalized string  `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Description     string  `gorm:"type:text" json:"description"`
	IsActive        bool    `gorm:"default:true;index" json:"isActive"`
	IsFeatured      bool    `gorm:"default:false" json:"isFeatured"`
	RatingAverage   float64 `gorm:"default:0" json:"ratingAverage"`
	RatingCount     int     `gorm:"default:0" json:"ratingCount"`
	RatingHistogram [5]int  `gorm:"type:json;serializer:json" json:"ratingHistogram"`
	Topics          []Topic `gorm:"foreignKey:CourseID" json:"topics,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeSave(*gorm.DB) error {
	c.TitleNormalized = strings.ToLower(c.Title)
	return nil
}

// Topic 课程下的章节，Order 在同一课程内唯一
type Topic struct {
	BaseModel
	CourseID uint     `gorm:"index;not null" json:"courseId"`
	Title    string   `gorm:"size:255;not null" json:"title"`
	Order    int      `gorm:"column:sort_order;default:0" json:"order"`
	IsActive bool     `gorm:"default:true" json:"isActive"`
	Lessons  []Lesson `gorm:"foreignKey:TopicID" json:"lessons,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}

// Lesson 章节下的课时，可携带测验题目（JSON 列，空表示无测验）
type Lesson struct {
	BaseModel
	TopicID  uint           `gorm:"index;not null" json:"topicId"`
	Title    string         `gorm:"size:255;not null" json:"title"`
	Order    int            `gorm:"column:sort_order;default:0" json:"order"`
	IsActive bool           `gorm:"default:true" json:"isActive"`
	Quiz     []QuizQuestion `gorm:"type:json;serializer:json" json:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) HasQuiz() bool {
	return len(l.Quiz) > 0
}

// QuizQuestion 测验题目的存储形态，CorrectAnswer 为选项下标
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// QuizQuestionPublic 未提交前返回给学生的投影，不含答案和解析
type QuizQuestionPublic struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizQuestionPrivileged 教师/管理员或已提交学生可见的完整投影
type QuizQuestionPrivileged struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

func ToPublicQuizQuestions(quiz []QuizQuestion) []QuizQuestionPublic {
	out := make([]QuizQuestionPublic, len(quiz))
	for i, q := range quiz {
		out[i] = QuizQuestionPublic{Question: q.Question, Options: q.Options}
	}
	return out
}

func ToPrivilegedQuizQuestions(quiz []QuizQuestion) []QuizQuestionPrivileged {
	out := make([]QuizQuestionPrivileged, len(quiz))
	for i, q := range quiz {
		out[i] = QuizQuestionPrivileged{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}
	return out
}
