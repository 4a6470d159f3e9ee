package service

import (
	"encoding/json"

	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{QuestionRepo: questionRepo}
}

// QuestionInput 题目创建/更新入参
type QuestionInput struct {
	Text           string   `json:"text" binding:"required"`
	Options        []string `json:"options" binding:"required"`
	CorrectOptions []int    `json:"correctOptions" binding:"required"`
	Subject        string   `json:"subject"`
	Difficulty     string   `json:"difficulty"`
	Explanation    string   `json:"explanation"`
	ImageURL       string   `json:"imageUrl"`
}

// validateQuestion 约束：至少2个选项，至少1个正确项，下标必须落在选项范围内
func validateQuestion(options []string, correct []int) error {
	if len(options) < 2 {
		return util.ErrTooFewOptions
	}
	if len(correct) < 1 {
		return util.ErrNoCorrectOption
	}
	seen := make(map[int]bool, len(correct))
	for _, idx := range correct {
		if idx < 0 || idx >= len(options) {
			return util.ErrInvalidOptionIndex
		}
		if seen[idx] {
			return util.ErrInvalidOptionIndex
		}
		seen[idx] = true
	}
	return nil
}

func (s *QuestionService) Create(creatorID uint, input *QuestionInput) (*model.Question, error) {
	if err := validateQuestion(input.Options, input.CorrectOptions); err != nil {
		return nil, err
	}

	optJSON, _ := json.Marshal(input.Options)
	correctJSON, _ := json.Marshal(input.CorrectOptions)

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = model.QuestionDifficultyEasy
	}

	q := &model.Question{
		CreatorID:      creatorID,
		Text:           input.Text,
		Options:        string(optJSON),
		CorrectOptions: string(correctJSON),
		Subject:        input.Subject,
		Difficulty:     difficulty,
		Explanation:    input.Explanation,
		ImageURL:       input.ImageURL,
	}
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Get(id string) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Update(id string, input *QuestionInput) (*model.Question, error) {
	q, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := validateQuestion(input.Options, input.CorrectOptions); err != nil {
		return nil, err
	}

	optJSON, _ := json.Marshal(input.Options)
	correctJSON, _ := json.Marshal(input.CorrectOptions)

	q.Text = input.Text
	q.Options = string(optJSON)
	q.CorrectOptions = string(correctJSON)
	q.Subject = input.Subject
	if input.Difficulty != "" {
		q.Difficulty = input.Difficulty
	}
	q.Explanation = input.Explanation
	if input.ImageURL != "" {
		q.ImageURL = input.ImageURL
	}

	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete 仍被试卷引用的题目不可删除, 避免改变进行中作答的评分基数
func (s *QuestionService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	links, err := s.QuestionRepo.CountTestLinks(id)
	if err != nil {
		return err
	}
	if links > 0 {
		return util.ErrQuestionInUse
	}
	return s.QuestionRepo.Delete(id)
}

func (s *QuestionService) List(page, limit int, subject, difficulty string) ([]model.Question, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.QuestionRepo.List(page, limit, subject, difficulty)
}
