package service

import "sort"

// 单题判定结果
const (
	VerdictCorrect    = "correct"
	VerdictIncorrect  = "incorrect"
	VerdictUnanswered = "unanswered"
)

// QuestionResult 交卷后的逐题结果
type QuestionResult struct {
	QuestionID     string `json:"questionId"`
	Selected       []int  `json:"selected"`
	CorrectOptions []int  `json:"correctOptions"`
	Verdict        string `json:"verdict"`
}

// ScoreSummary 整卷评分结果
type ScoreSummary struct {
	Score           float64          `json:"score"`
	CorrectCount    int              `json:"correctCount"`
	IncorrectCount  int              `json:"incorrectCount"`
	UnansweredCount int              `json:"unansweredCount"`
	Results         []QuestionResult `json:"results"`
}

// Judge 单题判定: 选中集合与正确集合完全相等才算对, 多选/漏选均算错, 空集算未答
func Judge(selected, correct []int) string {
	if len(selected) == 0 {
		return VerdictUnanswered
	}
	if sameIndexSet(selected, correct) {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

func sameIndexSet(a, b []int) bool {
	as := uniqueSorted(a)
	bs := uniqueSorted(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// uniqueSorted 下标集合归一化: 升序去重, 不改动入参。
// 比较和落库都走集合语义, 重复下标不改变含义
func uniqueSorted(v []int) []int {
	out := append([]int{}, v...)
	sort.Ints(out)
	n := 0
	for i, x := range out {
		if i == 0 || x != out[n-1] {
			out[n] = x
			n++
		}
	}
	return out[:n]
}

// ScoredQuestion 评分输入: 一道题的正确答案与考生选择
type ScoredQuestion struct {
	QuestionID     string
	CorrectOptions []int
	Selected       []int
}

// ScoreAttempt 整卷评分。每题分值为 totalMarks/totalQuestions,
// 答错按 negativeMarking 比例倒扣, 总分不做下限截断, 可以为负
func ScoreAttempt(questions []ScoredQuestion, totalMarks, negativeMarking float64) ScoreSummary {
	summary := ScoreSummary{Results: make([]QuestionResult, 0, len(questions))}
	if len(questions) == 0 {
		return summary
	}

	for _, q := range questions {
		verdict := Judge(q.Selected, q.CorrectOptions)
		switch verdict {
		case VerdictCorrect:
			summary.CorrectCount++
		case VerdictIncorrect:
			summary.IncorrectCount++
		default:
			summary.UnansweredCount++
		}
		summary.Results = append(summary.Results, QuestionResult{
			QuestionID:     q.QuestionID,
			Selected:       q.Selected,
			CorrectOptions: q.CorrectOptions,
			Verdict:        verdict,
		})
	}

	perQuestion := totalMarks / float64(len(questions))
	units := float64(summary.CorrectCount) - negativeMarking*float64(summary.IncorrectCount)
	summary.Score = units * perQuestion
	return summary
}
