package model

// ProgressBucket 进度直方图的一个固定分桶
type ProgressBucket struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// CourseAnalytics 单门课程的群体统计，对选课聚合做只读扫描得到
type CourseAnalytics struct {
	CourseID              uint                       `json:"courseId"`
	TotalEnrollments      int64                      `json:"totalEnrollments"`
	StatusCounts          map[EnrollmentStatus]int64 `json:"statusCounts"`
	ProgressHistogram     []ProgressBucket           `json:"progressHistogram"`
	CompletedCount        int64                      `json:"completedCount"`
	AverageCompletionDays float64                    `json:"averageCompletionDays"`
	LessonCompletions     map[uint]int64             `json:"lessonCompletions"`
}
