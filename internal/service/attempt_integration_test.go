package service

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"
	"exam_prep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 集成测试需要一个真实的 MySQL，默认跳过：
//
//	EXAM_PREP_INTEGRATION=1 EXAM_PREP_TEST_DSN="user:pass@tcp(localhost:3306)/exam_test?charset=utf8mb4&parseTime=True" go test ./internal/service/
func attemptTestEnv(t *testing.T) *AttemptService {
	t.Helper()
	if os.Getenv("EXAM_PREP_INTEGRATION") != "1" {
		t.Skip("set EXAM_PREP_INTEGRATION=1 to run integration tests")
	}
	dsn := os.Getenv("EXAM_PREP_TEST_DSN")
	if dsn == "" {
		t.Fatal("EXAM_PREP_TEST_DSN not set")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Batch{}, &model.Question{}, &model.Test{},
		&model.TestQuestion{}, &model.Attempt{}, &model.AttemptAnswer{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}

	cfg := &config.Config{}
	cfg.Exam.SubmitGraceSeconds = 30
	cfg.Exam.LeaderboardCacheTTL = 30

	attemptRepo := repository.NewAttemptRepository(db)
	testRepo := repository.NewTestRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	userRepo := repository.NewUserRepository(db)
	leaderboard := NewLeaderboardService(attemptRepo, testRepo, userRepo, nil, cfg)
	return NewAttemptService(attemptRepo, testRepo, questionRepo, userRepo, leaderboard, cfg)
}

func seedPublishedTest(t *testing.T, s *AttemptService, questionCount int) (*model.User, *model.Test) {
	t.Helper()
	suffix := time.Now().UnixNano()

	user := &model.User{
		Name:  fmt.Sprintf("itest-student-%d", suffix),
		Email: fmt.Sprintf("itest-%d@example.com", suffix),
		Role:  model.Student,
	}
	if err := s.UserRepo.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	var ids []string
	for i := 0; i < questionCount; i++ {
		opts, _ := json.Marshal([]string{"A", "B", "C", "D"})
		correct, _ := json.Marshal([]int{i % 4})
		q := &model.Question{
			Text:           fmt.Sprintf("itest question %d-%d", suffix, i),
			Options:        string(opts),
			CorrectOptions: string(correct),
		}
		if err := s.QuestionRepo.Create(q); err != nil {
			t.Fatalf("create question: %v", err)
		}
		ids = append(ids, q.ID)
	}

	now := time.Now()
	test := &model.Test{
		Title:           fmt.Sprintf("itest test %d", suffix),
		DurationMinutes: 30,
		TotalMarks:      100,
		NegativeMarking: 0.25,
		Status:          model.TestStatusPublished,
		PublishedAt:     &now,
		BatchIDs:        "[]",
	}
	if err := s.TestRepo.Create(test, ids); err != nil {
		t.Fatalf("create test: %v", err)
	}
	return user, test
}

func TestAttemptLifecycle_DBIntegration(t *testing.T) {
	s := attemptTestEnv(t)
	user, test := seedPublishedTest(t, s, 4)

	view, err := s.Start(user.ID, test.ID, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Attempt.Status != model.AttemptStatusInProgress {
		t.Fatalf("status = %s", view.Attempt.Status)
	}
	if len(view.Questions) != 4 {
		t.Fatalf("question count = %d", len(view.Questions))
	}

	// 不带 forceNew 再次 start 必须恢复同一条作答
	resumed, err := s.Start(user.ID, test.ID, false)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Attempt.ID != view.Attempt.ID {
		t.Errorf("resume returned different attempt: %s vs %s", resumed.Attempt.ID, view.Attempt.ID)
	}
	for i := range view.Questions {
		if resumed.Questions[i].ID != view.Questions[i].ID {
			t.Errorf("question order changed on resume at %d", i)
		}
	}

	// 答对第一题（正确答案组装时下标按创建顺序 i%4，但作答顺序被打乱，查库取正确集）
	firstID := view.Questions[0].ID
	q, err := s.QuestionRepo.FindByID(firstID)
	if err != nil {
		t.Fatalf("load question: %v", err)
	}
	correct, _ := q.CorrectSet()
	if err := s.SaveAnswer(user.ID, view.Attempt.ID, firstID, correct); err != nil {
		t.Fatalf("save answer: %v", err)
	}

	// 覆盖保存：同一题改成错误答案再改回来
	if err := s.SaveAnswer(user.ID, view.Attempt.ID, firstID, []int{(correct[0] + 1) % 4}); err != nil {
		t.Fatalf("overwrite answer: %v", err)
	}
	if err := s.SaveAnswer(user.ID, view.Attempt.ID, firstID, correct); err != nil {
		t.Fatalf("restore answer: %v", err)
	}

	result, err := s.Submit(user.ID, view.Attempt.ID, SubmitTriggerStudent)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Attempt.CorrectCount != 1 || result.Attempt.UnansweredCount != 3 {
		t.Errorf("counts = %d correct / %d unanswered, want 1/3",
			result.Attempt.CorrectCount, result.Attempt.UnansweredCount)
	}
	// (1 - 0.25*0) * 100/4 = 25
	if result.Attempt.Score != 25 {
		t.Errorf("score = %v, want 25", result.Attempt.Score)
	}

	// 交卷后写答案必须被拒
	if err := s.SaveAnswer(user.ID, view.Attempt.ID, firstID, correct); err == nil {
		t.Error("save after submit should fail")
	}

	// 重复交卷幂等，分数不被重算
	again, err := s.Submit(user.ID, view.Attempt.ID, SubmitTriggerStudent)
	if err != nil {
		t.Fatalf("double submit: %v", err)
	}
	if again.Attempt.Score != result.Attempt.Score {
		t.Errorf("double submit changed score: %v vs %v", again.Attempt.Score, result.Attempt.Score)
	}
}

func TestAttemptStartDuplicate_DBIntegration(t *testing.T) {
	s := attemptTestEnv(t)
	user, test := seedPublishedTest(t, s, 3)

	first, err := s.Start(user.ID, test.ID, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// 模拟并发开考落下的第二条 in_progress 残留, 创建时间晚于第一条
	stray := &model.Attempt{
		TestID:        test.ID,
		UserID:        user.ID,
		Status:        model.AttemptStatusInProgress,
		StartedAt:     time.Now(),
		QuestionOrder: first.Attempt.QuestionOrder,
	}
	stray.CreatedAt = time.Now().Add(2 * time.Second)
	if err := s.AttemptRepo.Create(stray); err != nil {
		t.Fatalf("create stray attempt: %v", err)
	}

	// 恢复时以创建最早的一条为准
	resumed, err := s.Start(user.ID, test.ID, false)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Attempt.ID != first.Attempt.ID {
		t.Errorf("resume picked %s, want earliest %s", resumed.Attempt.ID, first.Attempt.ID)
	}

	// 强制重开时全部残留都被置为 abandoned
	fresh, err := s.Start(user.ID, test.ID, true)
	if err != nil {
		t.Fatalf("force new: %v", err)
	}
	remaining, err := s.AttemptRepo.ListInProgress(user.ID, test.ID)
	if err != nil {
		t.Fatalf("list in progress: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != fresh.Attempt.ID {
		t.Errorf("in-progress rows = %d, want only the fresh attempt", len(remaining))
	}
}

func TestAttemptDuplicateSelection_DBIntegration(t *testing.T) {
	s := attemptTestEnv(t)
	user, test := seedPublishedTest(t, s, 1)

	view, err := s.Start(user.ID, test.ID, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	qid := view.Questions[0].ID
	q, err := s.QuestionRepo.FindByID(qid)
	if err != nil {
		t.Fatalf("load question: %v", err)
	}
	correct, _ := q.CorrectSet()

	// 重复点击同一选项提交的 [c,c] 按集合语义等于 [c]
	if err := s.SaveAnswer(user.ID, view.Attempt.ID, qid, []int{correct[0], correct[0]}); err != nil {
		t.Fatalf("save answer: %v", err)
	}
	result, err := s.Submit(user.ID, view.Attempt.ID, SubmitTriggerStudent)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Attempt.CorrectCount != 1 || result.Attempt.IncorrectCount != 0 {
		t.Errorf("counts = %d correct / %d incorrect, want 1/0",
			result.Attempt.CorrectCount, result.Attempt.IncorrectCount)
	}
	if result.Attempt.Score != 100 {
		t.Errorf("score = %v, want 100", result.Attempt.Score)
	}
}

func TestQuestionDeleteInUse_DBIntegration(t *testing.T) {
	s := attemptTestEnv(t)
	_, test := seedPublishedTest(t, s, 2)
	questions := NewQuestionService(s.QuestionRepo)

	ids, err := s.TestRepo.QuestionIDs(test.ID)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if err := questions.Delete(ids[0]); err != util.ErrQuestionInUse {
		t.Fatalf("delete referenced question: err = %v, want ErrQuestionInUse", err)
	}

	// 未被任何试卷引用的孤立题目可以删除
	opts, _ := json.Marshal([]string{"A", "B"})
	correct, _ := json.Marshal([]int{0})
	orphan := &model.Question{
		Text:           fmt.Sprintf("itest orphan %d", time.Now().UnixNano()),
		Options:        string(opts),
		CorrectOptions: string(correct),
	}
	if err := s.QuestionRepo.Create(orphan); err != nil {
		t.Fatalf("create orphan: %v", err)
	}
	if err := questions.Delete(orphan.ID); err != nil {
		t.Fatalf("delete orphan: %v", err)
	}
	if _, err := questions.Get(orphan.ID); err != util.ErrQuestionNotFound {
		t.Errorf("get deleted question: err = %v, want ErrQuestionNotFound", err)
	}
}

func TestAttemptForceNew_DBIntegration(t *testing.T) {
	s := attemptTestEnv(t)
	user, test := seedPublishedTest(t, s, 6)

	first, err := s.Start(user.ID, test.ID, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	second, err := s.Start(user.ID, test.ID, true)
	if err != nil {
		t.Fatalf("force new: %v", err)
	}
	if second.Attempt.ID == first.Attempt.ID {
		t.Fatal("forceNew returned the old attempt")
	}

	old, err := s.AttemptRepo.FindByID(first.Attempt.ID)
	if err != nil {
		t.Fatalf("reload old attempt: %v", err)
	}
	if old.Status != model.AttemptStatusAbandoned {
		t.Errorf("old attempt status = %s, want abandoned", old.Status)
	}

	// 旧记录不再接受作答或交卷
	if err := s.SaveAnswer(user.ID, first.Attempt.ID, second.Questions[0].ID, []int{0}); err == nil {
		t.Error("save to abandoned attempt should fail")
	}
	if _, err := s.Submit(user.ID, first.Attempt.ID, SubmitTriggerStudent); err == nil {
		t.Error("submit of abandoned attempt should fail")
	}
}
