package service

import (
	"encoding/json"
	"math/rand"
	"time"

	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"
	"exam_prep_backend/pkg/logger"
	"exam_prep_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 交卷触发来源，用于监控打点
const (
	SubmitTriggerStudent = "student"
	SubmitTriggerSweeper = "sweeper"
)

type AttemptService struct {
	AttemptRepo  *repository.AttemptRepository
	TestRepo     *repository.TestRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
	Leaderboard  *LeaderboardService
	Cfg          *config.Config
}

func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	leaderboard *LeaderboardService,
	cfg *config.Config,
) *AttemptService {
	return &AttemptService{
		AttemptRepo:  attemptRepo,
		TestRepo:     testRepo,
		QuestionRepo: questionRepo,
		UserRepo:     userRepo,
		Leaderboard:  leaderboard,
		Cfg:          cfg,
	}
}

// AttemptView 作答中的视图：题目按本次作答顺序排列，答案为已保存的选择
type AttemptView struct {
	Attempt          *model.Attempt    `json:"attempt"`
	Test             *model.Test       `json:"test"`
	Questions        []StudentQuestion `json:"questions"`
	Answers          map[string][]int  `json:"answers"`
	RemainingSeconds int               `json:"remainingSeconds"`
}

// ReviewQuestion 交卷后回看的题目：包含正确答案、解析与判定
type ReviewQuestion struct {
	StudentQuestion
	CorrectOptions []int  `json:"correctOptions"`
	Explanation    string `json:"explanation"`
	Selected       []int  `json:"selected"`
	Verdict        string `json:"verdict"`
}

// AttemptResult 交卷结果
type AttemptResult struct {
	Attempt *model.Attempt   `json:"attempt"`
	Review  []ReviewQuestion `json:"review"`
}

// Start 开始或恢复作答。同一 (用户, 试卷) 同时最多一条 in_progress 记录：
// 已有未提交记录且未强制重开时原样恢复，强制重开时旧记录置为 abandoned
func (s *AttemptService) Start(userID uint, testID string, forceNew bool) (*AttemptView, error) {
	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if test.Status != model.TestStatusPublished || !test.VisibleToBatch(user.BatchID) {
		return nil, util.ErrTestNotPublished
	}

	existing, err := s.AttemptRepo.ListInProgress(userID, testID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if !forceNew {
			return s.buildView(earliestAttempt(existing), test)
		}
		for i := range existing {
			if err := s.AttemptRepo.MarkAbandoned(existing[i].ID); err != nil {
				return nil, err
			}
		}
	}

	ids, err := s.TestRepo.QuestionIDs(testID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, util.ErrTestHasNoQuestions
	}

	// 每次作答独立洗牌，开考即固定
	order := shuffledOrder(ids)
	orderJSON, _ := json.Marshal(order)

	attempt := &model.Attempt{
		TestID:        testID,
		UserID:        userID,
		Status:        model.AttemptStatusInProgress,
		StartedAt:     time.Now(),
		QuestionOrder: string(orderJSON),
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	// 插入后复查: 并发开考可能各插一条 in_progress, 以最早创建的为准, 其余删除
	siblings, err := s.AttemptRepo.ListInProgress(userID, testID)
	if err != nil {
		return nil, err
	}
	if winner := earliestAttempt(siblings); winner != nil && winner.ID != attempt.ID {
		if err := s.AttemptRepo.Delete(attempt.ID); err != nil {
			return nil, err
		}
		return s.buildView(winner, test)
	}
	return s.buildView(attempt, test)
}

// earliestAttempt 并发开考的仲裁规则: 创建时间最早者胜, 同时刻按ID定序
func earliestAttempt(attempts []model.Attempt) *model.Attempt {
	var winner *model.Attempt
	for i := range attempts {
		a := &attempts[i]
		if winner == nil ||
			a.CreatedAt.Before(winner.CreatedAt) ||
			(a.CreatedAt.Equal(winner.CreatedAt) && a.ID < winner.ID) {
			winner = a
		}
	}
	return winner
}

// SaveAnswer 保存单题作答，整体替换该题此前的选择。
// 过期或已终结的作答一律拒绝，不产生任何状态变化
func (s *AttemptService) SaveAnswer(userID uint, attemptID, questionID string, selected []int) error {
	attempt, test, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return err
	}

	if err := writableAttempt(attempt, test.DurationMinutes, time.Now()); err != nil {
		return err
	}

	order, err := attempt.OrderList()
	if err != nil {
		return err
	}
	if !containsID(order, questionID) {
		return util.ErrQuestionNotInTest
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionNotFound
		}
		return err
	}
	opts, err := question.OptionList()
	if err != nil {
		return err
	}
	for _, idx := range selected {
		if idx < 0 || idx >= len(opts) {
			return util.ErrInvalidOptionIndex
		}
	}

	selJSON, _ := json.Marshal(uniqueSorted(selected))
	return s.AttemptRepo.UpsertAnswer(attemptID, questionID, string(selJSON))
}

// Submit 交卷。过期不阻止提交：用过期前保存的答案评分。
// 条件更新保证并发双提交只有一次生效，失败方返回已落库的结果
func (s *AttemptService) Submit(userID uint, attemptID, trigger string) (*AttemptResult, error) {
	attempt, test, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}

	switch attempt.Status {
	case model.AttemptStatusSubmitted:
		return s.buildResult(attempt, test)
	case model.AttemptStatusAbandoned:
		return nil, util.ErrAttemptAbandoned
	}

	scored, err := s.scoredQuestions(attempt)
	if err != nil {
		return nil, err
	}
	summary := ScoreAttempt(scored, test.TotalMarks, test.NegativeMarking)

	now := time.Now()
	attempt.SubmittedAt = &now
	attempt.Score = summary.Score
	attempt.CorrectCount = summary.CorrectCount
	attempt.IncorrectCount = summary.IncorrectCount
	attempt.UnansweredCount = summary.UnansweredCount

	won, err := s.AttemptRepo.SubmitUpdate(attempt)
	if err != nil {
		return nil, err
	}
	if !won {
		// 另一个提交已先落库，以库内结果为准
		persisted, err := s.AttemptRepo.FindByID(attemptID)
		if err != nil {
			return nil, err
		}
		if persisted.Status != model.AttemptStatusSubmitted {
			return nil, util.ErrAttemptAbandoned
		}
		return s.buildResult(persisted, test)
	}
	attempt.Status = model.AttemptStatusSubmitted

	monitoring.SubmitCounter.WithLabelValues(trigger).Inc()
	if s.Leaderboard != nil {
		s.Leaderboard.InvalidateTest(test.ID)
	}
	logger.Log.Info("attempt submitted",
		zap.String("attemptId", attempt.ID),
		zap.String("testId", test.ID),
		zap.Uint("userId", attempt.UserID),
		zap.Float64("score", attempt.Score),
		zap.String("trigger", trigger))

	return s.buildResult(attempt, test)
}

// GetAttempt 恢复/回看。进行中返回剩余时间与已保存答案；已提交返回判定与解析
func (s *AttemptService) GetAttempt(userID uint, attemptID string, isAdmin bool) (*AttemptView, *AttemptResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, util.ErrAttemptNotFound
		}
		return nil, nil, err
	}
	if attempt.UserID != userID && !isAdmin {
		return nil, nil, util.ErrAttemptNotFound
	}

	test, err := s.TestRepo.FindByID(attempt.TestID)
	if err != nil {
		return nil, nil, err
	}

	if attempt.Status == model.AttemptStatusSubmitted {
		result, err := s.buildResult(attempt, test)
		return nil, result, err
	}
	view, err := s.buildView(attempt, test)
	return view, nil, err
}

func (s *AttemptService) ListMine(userID uint, page, limit int) ([]model.Attempt, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.AttemptRepo.ListByUser(userID, page, limit)
}

// SweepExpired 后台收尾：对超时且过了宽限期仍未提交的作答强制交卷。
// 权威过期判断只来自服务端时钟与 startedAt，客户端时间不可信
func (s *AttemptService) SweepExpired() {
	grace := time.Duration(s.Cfg.Exam.SubmitGraceSeconds) * time.Second
	attempts, err := s.AttemptRepo.ListExpiredInProgress(grace, time.Now())
	if err != nil {
		logger.Log.Error("expiry sweep query failed", zap.Error(err))
		return
	}
	for i := range attempts {
		if _, err := s.Submit(attempts[i].UserID, attempts[i].ID, SubmitTriggerSweeper); err != nil {
			logger.Log.Error("force submit failed",
				zap.String("attemptId", attempts[i].ID), zap.Error(err))
		}
	}
	if len(attempts) > 0 {
		logger.Log.Info("expiry sweep finished", zap.Int("forced", len(attempts)))
	}
}

// writableAttempt 作答是否仍可写入: 已终结或已到截止时间的一律拒绝
func writableAttempt(attempt *model.Attempt, durationMinutes int, now time.Time) error {
	switch attempt.Status {
	case model.AttemptStatusSubmitted:
		return util.ErrAttemptSubmitted
	case model.AttemptStatusAbandoned:
		return util.ErrAttemptAbandoned
	}
	if attempt.Expired(durationMinutes, now) {
		return util.ErrAttemptExpired
	}
	return nil
}

func (s *AttemptService) ownedAttempt(userID uint, attemptID string) (*model.Attempt, *model.Test, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, util.ErrAttemptNotFound
		}
		return nil, nil, err
	}
	if attempt.UserID != userID {
		return nil, nil, util.ErrAttemptNotFound
	}
	test, err := s.TestRepo.FindByID(attempt.TestID)
	if err != nil {
		return nil, nil, err
	}
	return attempt, test, nil
}

func (s *AttemptService) savedAnswers(attemptID string) (map[string][]int, error) {
	rows, err := s.AttemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	answers := make(map[string][]int, len(rows))
	for i := range rows {
		sel, err := rows[i].SelectedList()
		if err != nil {
			return nil, err
		}
		answers[rows[i].QuestionID] = sel
	}
	return answers, nil
}

func (s *AttemptService) buildView(attempt *model.Attempt, test *model.Test) (*AttemptView, error) {
	order, err := attempt.OrderList()
	if err != nil {
		return nil, err
	}
	questions, err := s.questionViews(order)
	if err != nil {
		return nil, err
	}
	answers, err := s.savedAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	remaining := int(time.Until(attempt.ExpiresAt(test.DurationMinutes)).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return &AttemptView{
		Attempt:          attempt,
		Test:             test,
		Questions:        questions,
		Answers:          answers,
		RemainingSeconds: remaining,
	}, nil
}

func (s *AttemptService) buildResult(attempt *model.Attempt, test *model.Test) (*AttemptResult, error) {
	order, err := attempt.OrderList()
	if err != nil {
		return nil, err
	}
	answers, err := s.savedAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	qs, err := s.QuestionRepo.FindByIDs(order)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Question, len(qs))
	for i := range qs {
		byID[qs[i].ID] = &qs[i]
	}

	review := make([]ReviewQuestion, 0, len(order))
	for _, id := range order {
		q, ok := byID[id]
		if !ok {
			continue
		}
		opts, err := q.OptionList()
		if err != nil {
			return nil, err
		}
		correct, err := q.CorrectSet()
		if err != nil {
			return nil, err
		}
		selected := answers[id]
		review = append(review, ReviewQuestion{
			StudentQuestion: StudentQuestion{
				ID:       q.ID,
				Text:     q.Text,
				Options:  opts,
				Subject:  q.Subject,
				ImageURL: q.ImageURL,
			},
			CorrectOptions: correct,
			Explanation:    q.Explanation,
			Selected:       selected,
			Verdict:        Judge(selected, correct),
		})
	}
	return &AttemptResult{Attempt: attempt, Review: review}, nil
}

// scoredQuestions 评分快照：按作答顺序组装每题的正确集合与选择集合
func (s *AttemptService) scoredQuestions(attempt *model.Attempt) ([]ScoredQuestion, error) {
	order, err := attempt.OrderList()
	if err != nil {
		return nil, err
	}
	answers, err := s.savedAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	qs, err := s.QuestionRepo.FindByIDs(order)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Question, len(qs))
	for i := range qs {
		byID[qs[i].ID] = &qs[i]
	}

	scored := make([]ScoredQuestion, 0, len(order))
	for _, id := range order {
		q, ok := byID[id]
		if !ok {
			continue
		}
		correct, err := q.CorrectSet()
		if err != nil {
			return nil, err
		}
		scored = append(scored, ScoredQuestion{
			QuestionID:     id,
			CorrectOptions: correct,
			Selected:       answers[id],
		})
	}
	return scored, nil
}

func (s *AttemptService) questionViews(ids []string) ([]StudentQuestion, error) {
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

// shuffledOrder 返回题目ID的随机排列，不改动入参
func shuffledOrder(ids []string) []string {
	order := append([]string(nil), ids...)
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
