package model

import (
	"encoding/json"
	"time"
)

const (
	TestStatusDraft     = "draft"
	TestStatusPublished = "published"
)

// swagger:model Test
type Test struct {
	UUIDBase

	CreatorID       uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	DurationMinutes int        `gorm:"default:60" json:"durationMinutes"`
	TotalMarks      float64    `gorm:"default:100" json:"totalMarks"`
	NegativeMarking float64    `gorm:"default:0" json:"negativeMarking"` // 每道答错题扣除的单位分
	Status          string     `gorm:"type:enum('draft','published');default:'draft'" json:"status"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	BatchIDs        string     `gorm:"type:json" json:"batchIds"` // 可见批次ID数组，空数组对所有人可见
}

func (Test) TableName() string {
	return "tests"
}

// BatchList 解析可见批次列表
func (t *Test) BatchList() ([]string, error) {
	var ids []string
	if t.BatchIDs == "" {
		return ids, nil
	}
	err := json.Unmarshal([]byte(t.BatchIDs), &ids)
	return ids, err
}

// VisibleToBatch 判断试卷对某批次是否可见（空列表 = 全部可见）
func (t *Test) VisibleToBatch(batchID *string) bool {
	ids, err := t.BatchList()
	if err != nil || len(ids) == 0 {
		return true
	}
	if batchID == nil {
		return false
	}
	for _, id := range ids {
		if id == *batchID {
			return true
		}
	}
	return false
}

// TestQuestion 试卷与题目的有序关联
type TestQuestion struct {
	BaseModel
	TestID     string `gorm:"index;type:varchar(36)" json:"testId"`
	QuestionID string `gorm:"index;type:varchar(36)" json:"questionId"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}
