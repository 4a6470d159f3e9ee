package model

import "testing"

func strPtr(s string) *string { return &s }

func TestVisibleToBatch(t *testing.T) {
	cases := []struct {
		name     string
		batchIDs string
		batchID  *string
		want     bool
	}{
		{"空列表对所有人可见", `[]`, strPtr("b1"), true},
		{"未设置对所有人可见", ``, nil, true},
		{"命中批次", `["b1","b2"]`, strPtr("b2"), true},
		{"未命中批次", `["b1","b2"]`, strPtr("b3"), false},
		{"限定批次但用户无批次", `["b1"]`, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			test := &Test{BatchIDs: tc.batchIDs}
			if got := test.VisibleToBatch(tc.batchID); got != tc.want {
				t.Errorf("VisibleToBatch(%v) = %v, want %v", tc.batchID, got, tc.want)
			}
		})
	}
}

func TestQuestionHelpers(t *testing.T) {
	q := &Question{
		Options:        `["A","B","C","D"]`,
		CorrectOptions: `[1,3]`,
	}

	opts, err := q.OptionList()
	if err != nil || len(opts) != 4 {
		t.Fatalf("OptionList = %v, err = %v", opts, err)
	}
	correct, err := q.CorrectSet()
	if err != nil || len(correct) != 2 || correct[0] != 1 || correct[1] != 3 {
		t.Fatalf("CorrectSet = %v, err = %v", correct, err)
	}
}
