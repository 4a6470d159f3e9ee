package service

import "testing"

func TestCleanExtracted(t *testing.T) {
	cases := []struct {
		name        string
		in          ExtractedQuestion
		wantNil     bool
		wantOptions []string
		wantCorrect []int
	}{
		{
			name: "正常题目原样保留",
			in: ExtractedQuestion{
				Text:           "2+2 等于几?",
				Options:        []string{"三", "四", "五"},
				CorrectOptions: []int{1},
			},
			wantOptions: []string{"三", "四", "五"},
			wantCorrect: []int{1},
		},
		{
			name: "空选项被丢弃后答案下标重映射",
			in: ExtractedQuestion{
				Text:           "Pick the right number",
				Options:        []string{"$$$$", "Four", "Five"},
				CorrectOptions: []int{2},
			},
			wantOptions: []string{"Four", "Five"},
			wantCorrect: []int{1},
		},
		{
			name: "指向被丢弃选项的答案一并丢弃",
			in: ExtractedQuestion{
				Text:           "Pick one",
				Options:        []string{"$$$$", "Four", "Five"},
				CorrectOptions: []int{0, 2},
			},
			wantOptions: []string{"Four", "Five"},
			wantCorrect: []int{1},
		},
		{
			name: "越界下标被过滤",
			in: ExtractedQuestion{
				Text:           "Pick one",
				Options:        []string{"A1", "B2"},
				CorrectOptions: []int{-1, 5, 0},
			},
			wantOptions: []string{"A1", "B2"},
			wantCorrect: []int{0},
		},
		{
			name: "题干清洗后为空整题丢弃",
			in: ExtractedQuestion{
				Text:    "$$$$",
				Options: []string{"A1", "B2"},
			},
			wantNil: true,
		},
		{
			name: "有效选项不足2个整题丢弃",
			in: ExtractedQuestion{
				Text:    "Pick one",
				Options: []string{"Only", "$$$$"},
			},
			wantNil: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cleanExtracted(tc.in)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("cleanExtracted = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("cleanExtracted = nil, want candidate")
			}
			if len(got.Options) != len(tc.wantOptions) {
				t.Fatalf("options = %v, want %v", got.Options, tc.wantOptions)
			}
			for i := range tc.wantOptions {
				if got.Options[i] != tc.wantOptions[i] {
					t.Fatalf("options = %v, want %v", got.Options, tc.wantOptions)
				}
			}
			if len(got.CorrectOptions) != len(tc.wantCorrect) {
				t.Fatalf("correct = %v, want %v", got.CorrectOptions, tc.wantCorrect)
			}
			for i := range tc.wantCorrect {
				if got.CorrectOptions[i] != tc.wantCorrect[i] {
					t.Fatalf("correct = %v, want %v", got.CorrectOptions, tc.wantCorrect)
				}
			}
		})
	}
}
