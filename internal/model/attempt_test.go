package model

import (
	"testing"
	"time"
)

func TestAttemptExpired(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &Attempt{StartedAt: started}

	cases := []struct {
		name            string
		durationMinutes int
		now             time.Time
		want            bool
	}{
		{"刚开始", 30, started.Add(time.Second), false},
		{"临近截止", 30, started.Add(30*time.Minute - time.Second), false},
		{"恰好到点视为过期", 30, started.Add(30 * time.Minute), true},
		{"超时已久", 30, started.Add(2 * time.Hour), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Expired(tc.durationMinutes, tc.now); got != tc.want {
				t.Errorf("Expired(%d, %v) = %v, want %v", tc.durationMinutes, tc.now, got, tc.want)
			}
		})
	}
}

func TestAttemptOrderList(t *testing.T) {
	a := &Attempt{QuestionOrder: `["q3","q1","q2"]`}
	ids, err := a.OrderList()
	if err != nil {
		t.Fatalf("OrderList: %v", err)
	}
	want := []string{"q3", "q1", "q2"}
	if len(ids) != len(want) {
		t.Fatalf("len = %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	empty := &Attempt{}
	if ids, err := empty.OrderList(); err != nil || len(ids) != 0 {
		t.Errorf("empty order: ids=%v err=%v", ids, err)
	}
}

func TestAnswerSelectedList(t *testing.T) {
	ans := &AttemptAnswer{Selected: `[0,2]`}
	sel, err := ans.SelectedList()
	if err != nil || len(sel) != 2 || sel[0] != 0 || sel[1] != 2 {
		t.Errorf("SelectedList = %v, err = %v", sel, err)
	}

	blank := &AttemptAnswer{Selected: `[]`}
	sel, err = blank.SelectedList()
	if err != nil || len(sel) != 0 {
		t.Errorf("空选择应解析为空集: %v, %v", sel, err)
	}
}
