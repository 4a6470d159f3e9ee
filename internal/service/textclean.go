package service

import (
	"regexp"
	"strings"
)

// 导入文本清洗：LLM 抽取出的题干经常带着 LaTeX 标记和原文编号，
// 入库前做一轮确定性的规整
var (
	displayMathRe = regexp.MustCompile(`\$\$([^$]*)\$\$`)
	inlineMathRe  = regexp.MustCompile(`\$([^$]*)\$`)
	fracRe        = regexp.MustCompile(`\\frac\{([^{}]*)\}\{([^{}]*)\}`)
	sqrtRe        = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	superscriptRe = regexp.MustCompile(`\^\{([^{}]*)\}`)
	subscriptRe   = regexp.MustCompile(`_\{([^{}]*)\}`)
	latexCmdRe    = regexp.MustCompile(`\\(text|mathrm|mathbf|left|right)\b`)
	leadNumberRe  = regexp.MustCompile(`^\s*(?:[Qq]\.?\s*)?\(?\d+\)?[.):]\s*`)
	leadLetterRe  = regexp.MustCompile(`^\s*\(?[a-dA-D]\)?[.)]\s+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// CleanQuestionText 清洗题干：去 LaTeX 定界符、展开常见命令、去行首编号、合并空白
func CleanQuestionText(text string) string {
	out := displayMathRe.ReplaceAllString(text, "$1")
	out = inlineMathRe.ReplaceAllString(out, "$1")
	out = fracRe.ReplaceAllString(out, "($1)/($2)")
	out = sqrtRe.ReplaceAllString(out, "√($1)")
	out = superscriptRe.ReplaceAllString(out, "^$1")
	out = subscriptRe.ReplaceAllString(out, "_$1")
	out = latexCmdRe.ReplaceAllString(out, "")
	out = leadNumberRe.ReplaceAllString(out, "")
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// CleanOptionText 清洗选项：同题干，另外剥掉 "(a)" 之类的选项字母前缀
func CleanOptionText(text string) string {
	out := leadLetterRe.ReplaceAllString(text, "")
	return CleanQuestionText(out)
}
