package service

import (
	"regexp"
	"strings"
)

var (
	markdownSymbols = regexp.MustCompile("[*#_`~]")
	whitespaceRuns  = regexp.MustCompile(`\s+`)

	// 模型偶发的口头禅，连同其尾部标点和空白一起移除
	fillerPhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?i)thanks for the click[,.!]?\s*`),
		regexp.MustCompile(`(?i)thanks for clicking[,.!]?\s*`),
		regexp.MustCompile(`(?i)thank you for the click[,.!]?\s*`),
	}
)

// SanitizeAIResponse 在入库前清洗模型输出：去掉 markdown 符号和口头禅，
// 压缩空白。幂等，已清洗的文本再次清洗结果不变，渲染侧无需二次处理。
func SanitizeAIResponse(text string) string {
	if text == "" {
		return ""
	}

	cleaned := markdownSymbols.ReplaceAllString(text, "")
	for _, phrase := range fillerPhrases {
		cleaned = phrase.ReplaceAllString(cleaned, "")
	}
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}
