package service

import (
	"testing"

	"exam_prep_backend/internal/util"
)

func TestValidateQuestion(t *testing.T) {
	cases := []struct {
		name    string
		options []string
		correct []int
		wantErr error
	}{
		{"合法单选", []string{"A", "B", "C"}, []int{1}, nil},
		{"合法多选", []string{"A", "B", "C", "D"}, []int{0, 2}, nil},
		{"选项不足", []string{"A"}, []int{0}, util.ErrTooFewOptions},
		{"无正确项", []string{"A", "B"}, nil, util.ErrNoCorrectOption},
		{"下标越界", []string{"A", "B"}, []int{2}, util.ErrInvalidOptionIndex},
		{"下标为负", []string{"A", "B"}, []int{-1}, util.ErrInvalidOptionIndex},
		{"重复下标", []string{"A", "B", "C"}, []int{1, 1}, util.ErrInvalidOptionIndex},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validateQuestion(tc.options, tc.correct); got != tc.wantErr {
				t.Errorf("validateQuestion(%v, %v) = %v, want %v", tc.options, tc.correct, got, tc.wantErr)
			}
		})
	}
}
