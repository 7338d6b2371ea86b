package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shredstack/fuel-rx-sub006/config"
)

// LLMService is a thin client for an OpenAI-compatible chat completion API,
// used for batch produce weight estimation.
type LLMService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewLLMService() *LLMService {
	return &LLMService{
		apiKey:  config.GetEnv("LLM_API_KEY", ""),
		baseURL: config.GetEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		model:   config.GetEnv("LLM_MODEL", "gpt-4o-mini"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmChatRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature"`
}

type llmChatResponse struct {
	Choices []struct {
		Message llmMessage `json:"message"`
	} `json:"choices"`
}

func (s *LLMService) chat(messages []llmMessage) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: LLM_API_KEY not configured", ErrExternalUnavailable)
	}

	body, err := json.Marshal(llmChatRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   1000,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal chat request: %v", ErrExternalUnavailable, err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create chat request: %v", ErrExternalUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: call chat API: %v", ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read chat response: %v", ErrExternalUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: chat API status %d", ErrExternalUnavailable, resp.StatusCode)
	}

	var parsed llmChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse chat response: %v", ErrExternalUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: chat API returned no choices", ErrExternalUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}

// WeightEstimate is one per-item answer from the estimation call, joined
// back to inputs by case-insensitive name.
type WeightEstimate struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
}

// maxEstimatedGrams bounds a single estimate. Nothing on a plate weighs
// more than a large watermelon; anything above this is a model
// hallucination and is discarded.
const maxEstimatedGrams = 20000.0

// EstimateProduceWeights sends all unresolved items in a single batch call
// and parses the strict JSON answer. Anything malformed is treated as an
// unavailable service, never as a partial value.
func (s *LLMService) EstimateProduceWeights(items []ProduceItem) ([]WeightEstimate, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var list strings.Builder
	for _, it := range items {
		fmt.Fprintf(&list, "- %s: %.2f %s\n", it.Name, it.Amount, it.Unit)
	}

	prompt := fmt.Sprintf(`Estimate the total gram weight of each produce item below, given its amount and unit.

%s
Return ONLY a JSON array, one object per item:
[{"name": "<item name exactly as given>", "grams": <number>}]`, list.String())

	resp, err := s.chat([]llmMessage{
		{Role: "system", Content: "You are a nutrition expert. Estimate realistic edible weights for fruit and vegetable quantities."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	clean := strings.TrimSpace(resp)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```json")
		clean = strings.TrimPrefix(clean, "```")
		clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	}

	var estimates []WeightEstimate
	if err := json.Unmarshal([]byte(clean), &estimates); err != nil {
		return nil, fmt.Errorf("%w: parse weight estimates: %v", ErrExternalUnavailable, err)
	}

	out := make([]WeightEstimate, 0, len(estimates))
	for _, e := range estimates {
		if strings.TrimSpace(e.Name) == "" || e.Grams <= 0 || e.Grams > maxEstimatedGrams {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
