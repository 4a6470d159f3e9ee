package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"exam_prep_backend/internal/config"
	"exam_prep_backend/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// AIImportService 用 OpenAI 兼容接口从粘贴的原始文本中抽取结构化题目。
// 抽取结果只返回给管理员审阅，不直接入库
type AIImportService struct {
	api   *openai.Client
	model string
}

func NewAIImportService(cfg *config.Config) *AIImportService {
	clientCfg := openai.DefaultConfig(cfg.AI.APIKey)
	if cfg.AI.BaseURL != "" {
		clientCfg.BaseURL = cfg.AI.BaseURL
	}
	return &AIImportService{
		api:   openai.NewClientWithConfig(clientCfg),
		model: cfg.AI.Model,
	}
}

// ExtractedQuestion LLM 抽取出的候选题目，已过清洗
type ExtractedQuestion struct {
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	CorrectOptions []int    `json:"correctOptions"`
	Subject        string   `json:"subject"`
	Explanation    string   `json:"explanation"`
}

const extractSystemPrompt = `你是一个题目录入助手。从用户给出的原始文本中抽取选择题，输出 JSON：
{"questions":[{"text":"题干","options":["选项A","选项B",...],"correctOptions":[0起的正确选项下标],"subject":"学科","explanation":"解析，可为空"}]}
规则：
- 只抽取有明确选项的题目，每题至少2个选项。
- 正确答案能从文本中确定时填 correctOptions，否则置为空数组。
- 保留原文语言，不要翻译。只输出 JSON。`

type extractResponse struct {
	Questions []ExtractedQuestion `json:"questions"`
}

// Extract 抽取并清洗候选题目
func (s *AIImportService) Extract(ctx context.Context, rawText string) ([]ExtractedQuestion, error) {
	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: rawText},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	var parsed extractResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logger.Log.Warn("LLM extraction output not parseable", zap.String("raw", raw))
		return nil, fmt.Errorf("parse LLM response: %w", err)
	}

	out := make([]ExtractedQuestion, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		cleaned := cleanExtracted(q)
		if cleaned != nil {
			out = append(out, *cleaned)
		}
	}
	return out, nil
}

// cleanExtracted 清洗并丢弃不成形的候选（题干为空或选项不足2个）
func cleanExtracted(q ExtractedQuestion) *ExtractedQuestion {
	q.Text = CleanQuestionText(q.Text)
	if q.Text == "" {
		return nil
	}

	// 清洗可能丢弃空选项, 答案下标要跟着重映射到新位置
	options := make([]string, 0, len(q.Options))
	remap := make(map[int]int, len(q.Options))
	for i, opt := range q.Options {
		cleaned := CleanOptionText(opt)
		if cleaned == "" {
			continue
		}
		remap[i] = len(options)
		options = append(options, cleaned)
	}
	if len(options) < 2 {
		return nil
	}
	q.Options = options

	correct := make([]int, 0, len(q.CorrectOptions))
	for _, idx := range q.CorrectOptions {
		if mapped, ok := remap[idx]; ok {
			correct = append(correct, mapped)
		}
	}
	q.CorrectOptions = correct

	q.Subject = strings.TrimSpace(q.Subject)
	q.Explanation = CleanQuestionText(q.Explanation)
	return &q
}
