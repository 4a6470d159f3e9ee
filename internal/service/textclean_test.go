package service

import "testing"

func TestCleanQuestionText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"行内公式去定界符", `What is $x^2$ when x=3?`, "What is x^2 when x=3?"},
		{"块级公式去定界符", `Solve: $$y = 2x$$`, "Solve: y = 2x"},
		{"分数展开", `Compute \frac{a}{b} quickly`, "Compute (a)/(b) quickly"},
		{"根号展开", `Value of \sqrt{16} is?`, "Value of √(16) is?"},
		{"上标花括号", `Expand (a+b)^{2}`, "Expand (a+b)^2"},
		{"下标花括号", `Find x_{1} and x_{2}`, "Find x_1 and x_2"},
		{"去行首编号点", `1. Which of the following holds?`, "Which of the following holds?"},
		{"去行首编号括号", `(12) Pick the odd one out`, "Pick the odd one out"},
		{"去Q前缀编号", `Q3) State Ohm's law`, "State Ohm's law"},
		{"合并空白", "a  b\t c\n d", "a b c d"},
		{"首尾空白", "  trimmed  ", "trimmed"},
		{"普通文本不变", "Plain question text?", "Plain question text?"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanQuestionText(tc.in); got != tc.want {
				t.Errorf("CleanQuestionText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanOptionText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`(a) First choice`, "First choice"},
		{`B. Second choice`, "Second choice"},
		{`c) $x+1$`, "x+1"},
		{`No prefix here`, "No prefix here"},
	}
	for _, tc := range cases {
		if got := CleanOptionText(tc.in); got != tc.want {
			t.Errorf("CleanOptionText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
