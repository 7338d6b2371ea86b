package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLLMService(url string) *LLMService {
	return &LLMService{
		apiKey:  "test-key",
		baseURL: url,
		model:   "test-model",
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func chatReply(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return body
}

func TestEstimateProduceWeightsParsesFencedAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write(chatReply("```json\n[{\"name\": \"dragon fruit\", \"grams\": 600}]\n```"))
	}))
	defer srv.Close()

	svc := newTestLLMService(srv.URL)
	got, err := svc.EstimateProduceWeights([]ProduceItem{{Name: "dragon fruit", Amount: 1, Unit: "piece"}})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if len(got) != 1 || got[0].Name != "dragon fruit" || got[0].Grams != 600 {
		t.Fatalf("estimates: %+v", got)
	}
}

func TestEstimateProduceWeightsDiscardsImplausibleValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply(`[
			{"name": "rambutan", "grams": 31},
			{"name": "durian", "grams": 1000000000},
			{"name": "jackfruit", "grams": -4},
			{"name": "", "grams": 120}
		]`))
	}))
	defer srv.Close()

	svc := newTestLLMService(srv.URL)
	got, err := svc.EstimateProduceWeights([]ProduceItem{
		{Name: "rambutan", Amount: 1, Unit: "piece"},
		{Name: "durian", Amount: 1, Unit: "piece"},
		{Name: "jackfruit", Amount: 1, Unit: "piece"},
	})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if len(got) != 1 || got[0].Name != "rambutan" {
		t.Fatalf("only the plausible estimate survives, got %+v", got)
	}
}

func TestEstimateProduceWeightsMalformedAnswerIsRecoverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply("around 30 grams each, probably"))
	}))
	defer srv.Close()

	svc := newTestLLMService(srv.URL)
	_, err := svc.EstimateProduceWeights([]ProduceItem{{Name: "rambutan", Amount: 1, Unit: "piece"}})
	if err == nil {
		t.Fatal("expected error for a non-JSON answer")
	}
}
