package model

import "encoding/json"

const (
	QuestionDifficultyEasy   = "easy"
	QuestionDifficultyMedium = "medium"
	QuestionDifficultyHard   = "hard"
)

// swagger:model Question
type Question struct {
	UUIDBase

	CreatorID      uint   `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Text           string `gorm:"type:text;not null" json:"text"`
	Options        string `gorm:"type:json" json:"options"`        // 选项（JSON array of string）
	CorrectOptions string `gorm:"type:json" json:"correctOptions"` // 正确选项下标集合（JSON array of int，0起）
	Subject        string `gorm:"size:100;index" json:"subject"`
	Difficulty     string `gorm:"type:enum('easy','medium','hard');default:'easy'" json:"difficulty"`
	Explanation    string `gorm:"type:text" json:"explanation"` // 答案解析
	ImageURL       string `gorm:"size:255" json:"imageUrl"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList 解析JSON选项列表
func (q *Question) OptionList() ([]string, error) {
	var opts []string
	if q.Options == "" {
		return opts, nil
	}
	err := json.Unmarshal([]byte(q.Options), &opts)
	return opts, err
}

// CorrectSet 解析正确选项下标集合
func (q *Question) CorrectSet() ([]int, error) {
	var set []int
	if q.CorrectOptions == "" {
		return set, nil
	}
	err := json.Unmarshal([]byte(q.CorrectOptions), &set)
	return set, err
}
