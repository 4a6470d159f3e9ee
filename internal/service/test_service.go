package service

import (
	"encoding/json"
	"time"

	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"

	"gorm.io/gorm"
)

type TestService struct {
	TestRepo     *repository.TestRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
}

func NewTestService(
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
) *TestService {
	return &TestService{
		TestRepo:     testRepo,
		QuestionRepo: questionRepo,
		UserRepo:     userRepo,
	}
}

// TestInput 试卷创建/更新入参
type TestInput struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description"`
	DurationMinutes int      `json:"durationMinutes" binding:"required,min=1"`
	TotalMarks      float64  `json:"totalMarks" binding:"required,gt=0"`
	NegativeMarking float64  `json:"negativeMarking" binding:"gte=0"`
	QuestionIDs     []string `json:"questionIds"`
	BatchIDs        []string `json:"batchIds"`
}

// StudentQuestion 学生视角的题目：不含正确答案与解析
type StudentQuestion struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Subject  string   `json:"subject"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// TestSummary 试卷列表项
type TestSummary struct {
	*model.Test
	QuestionCount int `json:"questionCount"`
}

func (s *TestService) Create(creatorID uint, input *TestInput) (*model.Test, error) {
	if err := s.checkQuestionIDs(input.QuestionIDs); err != nil {
		return nil, err
	}

	batchJSON, _ := json.Marshal(input.BatchIDs)
	t := &model.Test{
		CreatorID:       creatorID,
		Title:           input.Title,
		Description:     input.Description,
		DurationMinutes: input.DurationMinutes,
		TotalMarks:      input.TotalMarks,
		NegativeMarking: input.NegativeMarking,
		Status:          model.TestStatusDraft,
		BatchIDs:        string(batchJSON),
	}
	if err := s.TestRepo.Create(t, input.QuestionIDs); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TestService) Get(id string) (*model.Test, error) {
	t, err := s.TestRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TestService) Update(id string, input *TestInput) (*model.Test, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkQuestionIDs(input.QuestionIDs); err != nil {
		return nil, err
	}

	batchJSON, _ := json.Marshal(input.BatchIDs)
	t.Title = input.Title
	t.Description = input.Description
	t.DurationMinutes = input.DurationMinutes
	t.TotalMarks = input.TotalMarks
	t.NegativeMarking = input.NegativeMarking
	t.BatchIDs = string(batchJSON)

	if err := s.TestRepo.Update(t, input.QuestionIDs); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TestService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.TestRepo.Delete(id)
}

// Publish 发布试卷。空卷禁止发布，重复发布为幂等操作
func (s *TestService) Publish(id string) (*model.Test, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TestStatusPublished {
		return t, nil
	}

	count, err := s.TestRepo.CountQuestions(id)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, util.ErrTestHasNoQuestions
	}

	now := time.Now()
	if err := s.TestRepo.Publish(id, now); err != nil {
		return nil, err
	}
	t.Status = model.TestStatusPublished
	t.PublishedAt = &now
	return t, nil
}

func (s *TestService) ListAdmin(page, limit int, status string) ([]TestSummary, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	tests, total, err := s.TestRepo.List(page, limit, status)
	if err != nil {
		return nil, 0, err
	}
	summaries, err := s.summarize(tests)
	return summaries, total, err
}

// ListForStudent 只返回已发布且对该学生批次可见的试卷
func (s *TestService) ListForStudent(userID uint) ([]TestSummary, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	tests, err := s.TestRepo.ListPublished()
	if err != nil {
		return nil, err
	}

	visible := make([]model.Test, 0, len(tests))
	for _, t := range tests {
		if t.VisibleToBatch(user.BatchID) {
			visible = append(visible, t)
		}
	}
	return s.summarize(visible)
}

// GetForStudent 学生端试卷详情：附带题目但隐藏正确答案
func (s *TestService) GetForStudent(userID uint, testID string) (*model.Test, []StudentQuestion, error) {
	t, err := s.Get(testID)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, nil, util.ErrUserNotFound
	}
	if t.Status != model.TestStatusPublished || !t.VisibleToBatch(user.BatchID) {
		return nil, nil, util.ErrTestNotPublished
	}

	ids, err := s.TestRepo.QuestionIDs(testID)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.studentQuestions(ids)
	if err != nil {
		return nil, nil, err
	}
	return t, questions, nil
}

// studentQuestions 按给定顺序组装学生视角的题目列表
func (s *TestService) studentQuestions(ids []string) ([]StudentQuestion, error) {
	qs, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Question, len(qs))
	for i := range qs {
		byID[qs[i].ID] = &qs[i]
	}

	out := make([]StudentQuestion, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		opts, err := q.OptionList()
		if err != nil {
			return nil, err
		}
		out = append(out, StudentQuestion{
			ID:       q.ID,
			Text:     q.Text,
			Options:  opts,
			Subject:  q.Subject,
			ImageURL: q.ImageURL,
		})
	}
	return out, nil
}

func (s *TestService) summarize(tests []model.Test) ([]TestSummary, error) {
	summaries := make([]TestSummary, 0, len(tests))
	for i := range tests {
		count, err := s.TestRepo.CountQuestions(tests[i].ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, TestSummary{
			Test:          &tests[i],
			QuestionCount: int(count),
		})
	}
	return summaries, nil
}

func (s *TestService) checkQuestionIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	qs, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return err
	}
	if len(qs) != len(ids) {
		return util.ErrQuestionNotFound
	}
	return nil
}
