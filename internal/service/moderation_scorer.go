package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
)

// maxNegativeScore 상한. 초과 점수는 상한으로 저장한다 (블라인드 유지)
const maxNegativeScore = 10

// ModerationScorer 제안 본문을 분석해 부적절성 점수와 기대효과/사례를 생성한다
type ModerationScorer interface {
	Analyze(ctx context.Context, text string) (*domain.ModerationResult, error)
}

// AIModerationScorer OpenAI 포맷 /chat/completions 프록시 호출
type AIModerationScorer struct {
	baseURL    string // e.g. "http://127.0.0.1:8317/v1"
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewAIModerationScorer creates a scorer; an empty baseURL yields a DisabledScorer
func NewAIModerationScorer(baseURL, apiKey, model string, timeout time.Duration) ModerationScorer {
	if strings.TrimSpace(baseURL) == "" {
		return DisabledScorer{}
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &AIModerationScorer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analyze 단일 시도, 재시도 없음
func (s *AIModerationScorer) Analyze(ctx context.Context, text string) (*domain.ModerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rawText, err := s.callProvider(ctx, moderationSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrModerationUnavailable, err)
	}
	result, err := parseModeration(rawText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrModerationUnavailable, err)
	}
	return result, nil
}

func (s *AIModerationScorer) callProvider(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      s.model,
		"max_tokens": 1024,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userMessage},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP 요청 실패: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("응답 읽기 실패: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API 오류 (%d): %s", resp.StatusCode, truncateStr(string(respBody), 200))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("응답 JSON 파싱 실패: %w", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("AI 응답에서 텍스트를 찾을 수 없습니다")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// parseModeration JSON 파싱 + 검증
func parseModeration(rawText string) (*domain.ModerationResult, error) {
	var resp domain.ModerationResult
	if err := json.Unmarshal([]byte(extractJSON(rawText)), &resp); err != nil {
		return nil, fmt.Errorf("JSON 파싱 실패: %w", err)
	}
	if resp.NegativeScore < 0 {
		return nil, fmt.Errorf("negative_score는 0 이상이어야 합니다 (받은 값: %d)", resp.NegativeScore)
	}
	if resp.NegativeScore > maxNegativeScore {
		resp.NegativeScore = maxNegativeScore
	}
	resp.Effect = strings.TrimSpace(resp.Effect)
	resp.Case = strings.TrimSpace(resp.Case)
	return &resp, nil
}

// extractJSON 코드블록에서 JSON 추출
func extractJSON(rawText string) string {
	if idx := strings.Index(rawText, "```"); idx >= 0 {
		start := strings.Index(rawText[idx:], "\n")
		if start >= 0 {
			end := strings.Index(rawText[idx+start+1:], "```")
			if end >= 0 {
				return strings.TrimSpace(rawText[idx+start+1 : idx+start+1+end])
			}
		}
	}
	return rawText
}

// truncateStr truncates a string to maxLen bytes
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// DisabledScorer 모더레이션 미설정. 항상 실패하므로 제출은 점수 0 으로 저장된다.
type DisabledScorer struct{}

// Analyze always reports the scorer as unavailable
func (DisabledScorer) Analyze(context.Context, string) (*domain.ModerationResult, error) {
	return nil, common.ErrModerationUnavailable
}

const moderationSystemPrompt = `당신은 사내 제안(의견) 접수 시스템의 콘텐츠 검토 AI 입니다.
임직원이 제출한 개선 제안을 읽고 아래 세 가지를 작성합니다.

1. negative_score: 부적절성 점수 (0~10 정수)
   - 0: 문제 없음
   - 1~2: 다소 감정적이지만 업무 제안으로 볼 수 있음
   - 3 이상: 욕설, 비방, 특정인 공격, 차별, 개인정보 노출 등 공개하기 부적절한 내용
2. effect: 제안이 반영되었을 때 기대되는 효과 (한글 2~3문장)
3. case: 유사한 국내외 기업 사례 (한글 2~3문장, 없으면 빈 문자열)

## 출력 형식
반드시 아래 JSON 형식만 반환하세요. 다른 텍스트는 포함하지 마세요.

{
  "negative_score": number,
  "effect": string,
  "case": string
}`
