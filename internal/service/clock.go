package service

import "time"

// Clock 抽象当前时间，进度引擎和测验引擎的所有时间戳都经过它，
// 测试注入固定时钟即可验证时间戳单调性
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var SystemClock Clock = systemClock{}
