package service

import (
	"sort"
	"testing"
	"time"

	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/util"
)

func TestWritableAttempt(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		status  string
		now     time.Time
		wantErr error
	}{
		{"进行中未超时可写", model.AttemptStatusInProgress, start.Add(29 * time.Minute), nil},
		{"到达截止时刻即拒绝", model.AttemptStatusInProgress, start.Add(30 * time.Minute), util.ErrAttemptExpired},
		{"超时后拒绝", model.AttemptStatusInProgress, start.Add(31 * time.Minute), util.ErrAttemptExpired},
		{"已提交拒绝", model.AttemptStatusSubmitted, start.Add(1 * time.Minute), util.ErrAttemptSubmitted},
		{"已放弃拒绝", model.AttemptStatusAbandoned, start.Add(1 * time.Minute), util.ErrAttemptAbandoned},
		{"已提交且超时按已提交报错", model.AttemptStatusSubmitted, start.Add(45 * time.Minute), util.ErrAttemptSubmitted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attempt := &model.Attempt{Status: tc.status, StartedAt: start}
			if got := writableAttempt(attempt, 30, tc.now); got != tc.wantErr {
				t.Errorf("writableAttempt = %v, want %v", got, tc.wantErr)
			}
		})
	}
}

func TestEarliestAttempt(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mk := func(id string, created time.Time) model.Attempt {
		a := model.Attempt{}
		a.ID = id
		a.CreatedAt = created
		return a
	}

	t.Run("创建最早者胜", func(t *testing.T) {
		attempts := []model.Attempt{
			mk("b", t0.Add(2*time.Second)),
			mk("a", t0),
			mk("c", t0.Add(1*time.Second)),
		}
		if got := earliestAttempt(attempts); got == nil || got.ID != "a" {
			t.Errorf("winner = %+v, want a", got)
		}
	})

	t.Run("同时刻按ID定序", func(t *testing.T) {
		attempts := []model.Attempt{
			mk("z", t0),
			mk("m", t0),
		}
		if got := earliestAttempt(attempts); got == nil || got.ID != "m" {
			t.Errorf("winner = %+v, want m", got)
		}
	})

	t.Run("空列表返回nil", func(t *testing.T) {
		if got := earliestAttempt(nil); got != nil {
			t.Errorf("winner = %+v, want nil", got)
		}
	})
}

func TestShuffledOrderIsPermutation(t *testing.T) {
	ids := []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8"}

	got := shuffledOrder(ids)
	if len(got) != len(ids) {
		t.Fatalf("len = %d, want %d", len(got), len(ids))
	}

	sortedGot := append([]string(nil), got...)
	sortedWant := append([]string(nil), ids...)
	sort.Strings(sortedGot)
	sort.Strings(sortedWant)
	for i := range sortedWant {
		if sortedGot[i] != sortedWant[i] {
			t.Fatalf("not a permutation: %v", got)
		}
	}
}

func TestShuffledOrderDoesNotMutateInput(t *testing.T) {
	ids := []string{"q1", "q2", "q3"}
	orig := append([]string(nil), ids...)
	shuffledOrder(ids)
	for i := range orig {
		if ids[i] != orig[i] {
			t.Fatalf("input mutated: %v", ids)
		}
	}
}

func TestShuffledOrderVaries(t *testing.T) {
	// 50个元素连续洗两次完全一致的概率可以忽略；重试几次避免偶发
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = string(rune('a' + i%26))
	}
	for attempt := 0; attempt < 5; attempt++ {
		a := shuffledOrder(ids)
		b := shuffledOrder(ids)
		same := true
		for i := range a {
			if a[i] != b[i] {
				same = false
				break
			}
		}
		if !same {
			return
		}
	}
	t.Error("shuffle produced identical order repeatedly")
}
