package model

import (
	"encoding/json"
	"time"
)

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusSubmitted  = "submitted"
	AttemptStatusAbandoned  = "abandoned"
)

// swagger:model Attempt
type Attempt struct {
	UUIDBase

	TestID      string     `gorm:"index;type:varchar(36)" json:"testId"`
	UserID      uint       `gorm:"index;type:bigint unsigned" json:"userId"`
	Status      string     `gorm:"type:enum('in_progress','submitted','abandoned');default:'in_progress';index" json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`

	// 本次作答的题目顺序（试卷题目ID的随机排列，开考时固定）
	QuestionOrder string `gorm:"type:json" json:"questionOrder"`

	// 交卷后落库的结果字段
	Score           float64 `json:"score"`
	CorrectCount    int     `json:"correctCount"`
	IncorrectCount  int     `json:"incorrectCount"`
	UnansweredCount int     `json:"unansweredCount"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// OrderList 解析题目顺序
func (a *Attempt) OrderList() ([]string, error) {
	var ids []string
	if a.QuestionOrder == "" {
		return ids, nil
	}
	err := json.Unmarshal([]byte(a.QuestionOrder), &ids)
	return ids, err
}

// ExpiresAt 作答截止时间点
func (a *Attempt) ExpiresAt(durationMinutes int) time.Time {
	return a.StartedAt.Add(time.Duration(durationMinutes) * time.Minute)
}

// Expired 过期谓词：唯一的权威判断来自服务端时钟与 StartedAt
func (a *Attempt) Expired(durationMinutes int, now time.Time) bool {
	return !now.Before(a.ExpiresAt(durationMinutes))
}

// AttemptAnswer 存储单题的作答（每题一行，保存即整体替换）
type AttemptAnswer struct {
	BaseModel
	AttemptID  string `gorm:"type:varchar(36);uniqueIndex:idx_attempt_question" json:"attemptId"`
	QuestionID string `gorm:"type:varchar(36);uniqueIndex:idx_attempt_question" json:"questionId"`
	Selected   string `gorm:"type:json" json:"selected"` // 选中的选项下标集合（JSON array of int）
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}

// SelectedList 解析选中的选项下标
func (a *AttemptAnswer) SelectedList() ([]int, error) {
	var sel []int
	if a.Selected == "" {
		return sel, nil
	}
	err := json.Unmarshal([]byte(a.Selected), &sel)
	return sel, err
}
