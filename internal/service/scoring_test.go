package service

import (
	"math"
	"testing"
)

func TestJudge(t *testing.T) {
	cases := []struct {
		name     string
		selected []int
		correct  []int
		want     string
	}{
		{"单选答对", []int{2}, []int{2}, VerdictCorrect},
		{"单选答错", []int{1}, []int{2}, VerdictIncorrect},
		{"多选全对顺序无关", []int{3, 1}, []int{1, 3}, VerdictCorrect},
		{"多选漏选算错", []int{1}, []int{1, 3}, VerdictIncorrect},
		{"多选多选算错", []int{1, 2, 3}, []int{1, 3}, VerdictIncorrect},
		{"部分交集算错", []int{0, 2}, []int{1, 2}, VerdictIncorrect},
		{"空集为未答", nil, []int{0}, VerdictUnanswered},
		{"空切片为未答", []int{}, []int{1, 2}, VerdictUnanswered},
		{"重复下标按集合判定", []int{0, 0}, []int{0}, VerdictCorrect},
		{"多选重复下标按集合判定", []int{2, 1, 2}, []int{1, 2}, VerdictCorrect},
		{"重复下标不足集合仍算错", []int{1, 1}, []int{1, 2}, VerdictIncorrect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Judge(tc.selected, tc.correct); got != tc.want {
				t.Errorf("Judge(%v, %v) = %s, want %s", tc.selected, tc.correct, got, tc.want)
			}
		})
	}
}

func TestScoreAttempt(t *testing.T) {
	// 满分100, 4题, 倒扣0.25: 对2错1未答1 => (2 - 0.25) * 25 = 43.75
	questions := []ScoredQuestion{
		{QuestionID: "q1", CorrectOptions: []int{0}, Selected: []int{0}},
		{QuestionID: "q2", CorrectOptions: []int{1, 2}, Selected: []int{1, 2}},
		{QuestionID: "q3", CorrectOptions: []int{3}, Selected: []int{0}},
		{QuestionID: "q4", CorrectOptions: []int{2}, Selected: nil},
	}
	got := ScoreAttempt(questions, 100, 0.25)

	if got.CorrectCount != 2 || got.IncorrectCount != 1 || got.UnansweredCount != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/1",
			got.CorrectCount, got.IncorrectCount, got.UnansweredCount)
	}
	if math.Abs(got.Score-43.75) > 1e-9 {
		t.Errorf("score = %v, want 43.75", got.Score)
	}
	if len(got.Results) != 4 {
		t.Fatalf("results len = %d, want 4", len(got.Results))
	}
	wantVerdicts := []string{VerdictCorrect, VerdictCorrect, VerdictIncorrect, VerdictUnanswered}
	for i, r := range got.Results {
		if r.Verdict != wantVerdicts[i] {
			t.Errorf("results[%d].Verdict = %s, want %s", i, r.Verdict, wantVerdicts[i])
		}
	}
}

func TestScoreAttemptDuplicateSelection(t *testing.T) {
	// 选中集合语义: [1,1] 与 [1] 等价, 判对且不倒扣
	questions := []ScoredQuestion{
		{QuestionID: "q1", CorrectOptions: []int{1}, Selected: []int{1, 1}},
	}
	got := ScoreAttempt(questions, 100, 0.25)
	if got.CorrectCount != 1 || got.IncorrectCount != 0 {
		t.Fatalf("counts = %d/%d, want 1/0", got.CorrectCount, got.IncorrectCount)
	}
	if math.Abs(got.Score-100) > 1e-9 {
		t.Errorf("score = %v, want 100", got.Score)
	}
}

func TestUniqueSorted(t *testing.T) {
	cases := []struct {
		name string
		in   []int
		want []int
	}{
		{"去重并排序", []int{2, 0, 2, 1, 0}, []int{0, 1, 2}},
		{"已归一原样", []int{0, 3}, []int{0, 3}},
		{"nil得到空集", nil, []int{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := uniqueSorted(tc.in)
			if got == nil || len(got) != len(tc.want) {
				t.Fatalf("uniqueSorted(%v) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("uniqueSorted(%v) = %v, want %v", tc.in, got, tc.want)
				}
			}
		})
	}
}

func TestScoreAttemptNegativeTotal(t *testing.T) {
	// 全部答错且倒扣时总分为负, 不做截断
	questions := []ScoredQuestion{
		{QuestionID: "q1", CorrectOptions: []int{0}, Selected: []int{1}},
		{QuestionID: "q2", CorrectOptions: []int{0}, Selected: []int{1}},
	}
	got := ScoreAttempt(questions, 100, 0.5)
	if math.Abs(got.Score-(-50)) > 1e-9 {
		t.Errorf("score = %v, want -50", got.Score)
	}
}

func TestScoreAttemptNoNegativeMarking(t *testing.T) {
	questions := []ScoredQuestion{
		{QuestionID: "q1", CorrectOptions: []int{0}, Selected: []int{0}},
		{QuestionID: "q2", CorrectOptions: []int{0}, Selected: []int{1}},
		{QuestionID: "q3", CorrectOptions: []int{0}, Selected: []int{1}},
	}
	got := ScoreAttempt(questions, 30, 0)
	if math.Abs(got.Score-10) > 1e-9 {
		t.Errorf("score = %v, want 10", got.Score)
	}
}

func TestScoreAttemptCountInvariant(t *testing.T) {
	questions := []ScoredQuestion{
		{QuestionID: "q1", CorrectOptions: []int{0}, Selected: []int{0}},
		{QuestionID: "q2", CorrectOptions: []int{1}, Selected: nil},
		{QuestionID: "q3", CorrectOptions: []int{2}, Selected: []int{0}},
		{QuestionID: "q4", CorrectOptions: []int{0, 1}, Selected: []int{0, 1}},
		{QuestionID: "q5", CorrectOptions: []int{3}, Selected: []int{}},
	}
	got := ScoreAttempt(questions, 50, 0.25)
	if sum := got.CorrectCount + got.IncorrectCount + got.UnansweredCount; sum != len(questions) {
		t.Errorf("count sum = %d, want %d", sum, len(questions))
	}
}

func TestScoreAttemptDeterministic(t *testing.T) {
	questions := []ScoredQuestion{
		{QuestionID: "q1", CorrectOptions: []int{1, 3}, Selected: []int{3, 1}},
		{QuestionID: "q2", CorrectOptions: []int{0}, Selected: []int{2}},
	}
	first := ScoreAttempt(questions, 20, 0.25)
	for i := 0; i < 10; i++ {
		again := ScoreAttempt(questions, 20, 0.25)
		if again.Score != first.Score ||
			again.CorrectCount != first.CorrectCount ||
			again.IncorrectCount != first.IncorrectCount {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestScoreAttemptEmpty(t *testing.T) {
	got := ScoreAttempt(nil, 100, 0.25)
	if got.Score != 0 || len(got.Results) != 0 {
		t.Errorf("empty attempt: %+v", got)
	}
}
