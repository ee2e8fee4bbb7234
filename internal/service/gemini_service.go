package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"teach_clone_backend/internal/config"
	"teach_clone_backend/pkg/monitoring"
	"time"
)

// InferenceGateway 推理网关契约。网关层不做重试，一次失败即为该次调用的最终结果，
// 降级策略由调用方（分析引擎的 fallback 链）实现。
type InferenceGateway interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateFromMedia(ctx context.Context, prompt string, media []byte, mimeType string) (string, error)
	GenerateChat(ctx context.Context, systemPrompt string, history []GeminiMessage, newMessage string) (string, error)
}

// GeminiMessage 两方角色词表：user（学生）/ model（AI）
type GeminiMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const geminiEnglishOnly = "\n\nRespond ONLY in English."

// 固定输出规范，与 SanitizeAIResponse 的清洗逻辑配合，从源头减少需要清洗的内容
const geminiOutputRules = `
IMPORTANT OUTPUT RULES:
1. Do NOT use markdown formatting (no asterisks *, no bold, no italics, no #).
2. Do NOT use phrases like "Thanks for the click".
3. Write naturally as if speaking in a conversation.
4. Keep responses plain text only.
`

type GeminiService struct {
	config config.GeminiConfig
	client *http.Client
}

func NewGeminiService(cfg config.GeminiConfig) *GeminiService {
	return &GeminiService{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := &geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt + geminiEnglishOnly}}},
		},
	}
	return s.generate(ctx, "generate_text", req)
}

func (s *GeminiService) GenerateFromMedia(ctx context.Context, prompt string, media []byte, mimeType string) (string, error) {
	req := &geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{InlineData: &geminiInlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(media)}},
					{Text: prompt},
				},
			},
		},
	}
	return s.generate(ctx, "generate_from_media", req)
}

func (s *GeminiService) GenerateChat(ctx context.Context, systemPrompt string, history []GeminiMessage, newMessage string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, h := range history {
		contents = append(contents, geminiContent{Role: h.Role, Parts: []geminiPart{{Text: h.Text}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: newMessage}}})

	req := &geminiRequest{
		Contents:          contents,
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt + geminiOutputRules}}},
	}
	return s.generate(ctx, "generate_chat", req)
}

func (s *GeminiService) generate(ctx context.Context, method string, reqBody *geminiRequest) (string, error) {
	start := time.Now()
	text, err := s.doGenerate(ctx, reqBody)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	monitoring.GatewayCallDuration.WithLabelValues(method, outcome).Observe(time.Since(start).Seconds())

	return text, err
}

func (s *GeminiService) doGenerate(ctx context.Context, reqBody *geminiRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(s.config.BaseURL, "/"), s.config.Model, s.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("gemini API error: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
