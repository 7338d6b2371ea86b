package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shredstack/fuel-rx-sub006/config"
)

const defaultFDCBaseURL = "https://api.nal.usda.gov"

// ErrExternalUnavailable marks a recoverable upstream failure. Callers
// degrade to local-only results instead of failing the request.
var ErrExternalUnavailable = errors.New("external service unavailable")

// ExternalCandidate is one food record from the external nutrition database.
// Nutrients are per 100 g (or 100 ml). Transient; never persisted directly.
type ExternalCandidate struct {
	ExternalID      string  `json:"external_id"`
	Description     string  `json:"description"`
	DataType        string  `json:"data_type"`
	BrandOwner      string  `json:"brand_owner,omitempty"`
	IngredientsText string  `json:"ingredients_text,omitempty"`
	Calories        float64 `json:"calories"`
	Protein         float64 `json:"protein"`
	Carbs           float64 `json:"carbs"`
	Fat             float64 `json:"fat"`
	Fiber           float64 `json:"fiber"`
	Sugar           float64 `json:"sugar"`

	ServingSize     float64           `json:"serving_size,omitempty"`
	ServingSizeUnit string            `json:"serving_size_unit,omitempty"`
	Portions        []CandidatePortion `json:"portions,omitempty"`
}

// CandidatePortion is a discrete household portion ("1 medium", "1 cup")
// with its gram weight.
type CandidatePortion struct {
	Description string  `json:"description"`
	GramWeight  float64 `json:"gram_weight"`
}

type FDCService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewFDCService initializes the FoodData Central client with credentials
// from the environment and a short per-call timeout.
func NewFDCService() *FDCService {
	return &FDCService{
		apiKey:  config.GetEnv("FDC_API_KEY", ""),
		baseURL: config.GetEnv("FDC_BASE_URL", defaultFDCBaseURL),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FDC nutrient numbers for the macros we track.
const (
	nutrientEnergy  = 1008
	nutrientProtein = 1003
	nutrientFat     = 1004
	nutrientCarbs   = 1005
	nutrientFiber   = 1079
	nutrientSugar   = 2000
)

type fdcSearchResponse struct {
	TotalHits int `json:"totalHits"`
	Foods     []struct {
		FDCID           int64   `json:"fdcId"`
		Description     string  `json:"description"`
		DataType        string  `json:"dataType"`
		BrandOwner      string  `json:"brandOwner"`
		Ingredients     string  `json:"ingredients"`
		ServingSize     float64 `json:"servingSize"`
		ServingSizeUnit string  `json:"servingSizeUnit"`
		FoodNutrients   []struct {
			NutrientID   int64   `json:"nutrientId"`
			NutrientName string  `json:"nutrientName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// Search calls the FDC search endpoint and maps the page of hits onto
// candidates. Any transport, status or parse failure is reported as
// ErrExternalUnavailable; a single attempt, no retries.
func (s *FDCService) Search(query string, limit int) ([]ExternalCandidate, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	payload, err := json.Marshal(map[string]interface{}{
		"query":    query,
		"pageSize": limit,
		"dataType": []string{"Foundation", "SR Legacy", "Survey (FNDDS)", "Branded"},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: marshal search payload: %v", ErrExternalUnavailable, err)
	}

	u := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", strings.TrimRight(s.baseURL, "/"), s.apiKey)
	req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: create search request: %v", ErrExternalUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: call FDC search: %v", ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read FDC search response: %v", ErrExternalUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: FDC search status %d", ErrExternalUnavailable, resp.StatusCode)
	}

	var sr fdcSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, 0, fmt.Errorf("%w: parse FDC search JSON: %v", ErrExternalUnavailable, err)
	}

	out := make([]ExternalCandidate, 0, len(sr.Foods))
	for _, f := range sr.Foods {
		c := ExternalCandidate{
			ExternalID:      fmt.Sprintf("%d", f.FDCID),
			Description:     strings.TrimSpace(f.Description),
			DataType:        f.DataType,
			BrandOwner:      strings.TrimSpace(f.BrandOwner),
			IngredientsText: strings.TrimSpace(f.Ingredients),
			ServingSize:     f.ServingSize,
			ServingSizeUnit: strings.TrimSpace(f.ServingSizeUnit),
		}
		for _, n := range f.FoodNutrients {
			assignNutrient(&c, n.NutrientID, n.Value)
		}
		out = append(out, c)
	}
	return out, sr.TotalHits, nil
}

type fdcDetailResponse struct {
	FDCID           int64   `json:"fdcId"`
	Description     string  `json:"description"`
	DataType        string  `json:"dataType"`
	BrandOwner      string  `json:"brandOwner"`
	Ingredients     string  `json:"ingredients"`
	ServingSize     float64 `json:"servingSize"`
	ServingSizeUnit string  `json:"servingSizeUnit"`
	FoodNutrients   []struct {
		Nutrient struct {
			ID int64 `json:"id"`
		} `json:"nutrient"`
		Amount float64 `json:"amount"`
	} `json:"foodNutrients"`
	FoodPortions []struct {
		PortionDescription string  `json:"portionDescription"`
		Modifier           string  `json:"modifier"`
		GramWeight         float64 `json:"gramWeight"`
	} `json:"foodPortions"`
}

// GetDetails fetches the full record for one external id, including the
// complete nutrient vector and household portions.
func (s *FDCService) GetDetails(externalID string) (ExternalCandidate, error) {
	u := fmt.Sprintf("%s/fdc/v1/food/%s?api_key=%s", strings.TrimRight(s.baseURL, "/"), externalID, s.apiKey)
	resp, err := s.client.Get(u)
	if err != nil {
		return ExternalCandidate{}, fmt.Errorf("%w: call FDC detail: %v", ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ExternalCandidate{}, fmt.Errorf("%w: read FDC detail response: %v", ErrExternalUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return ExternalCandidate{}, fmt.Errorf("%w: FDC detail status %d", ErrExternalUnavailable, resp.StatusCode)
	}

	var dr fdcDetailResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return ExternalCandidate{}, fmt.Errorf("%w: parse FDC detail JSON: %v", ErrExternalUnavailable, err)
	}
	if dr.FDCID == 0 || dr.Description == "" {
		return ExternalCandidate{}, fmt.Errorf("%w: FDC detail missing identity fields", ErrExternalUnavailable)
	}

	c := ExternalCandidate{
		ExternalID:      fmt.Sprintf("%d", dr.FDCID),
		Description:     strings.TrimSpace(dr.Description),
		DataType:        dr.DataType,
		BrandOwner:      strings.TrimSpace(dr.BrandOwner),
		IngredientsText: strings.TrimSpace(dr.Ingredients),
		ServingSize:     dr.ServingSize,
		ServingSizeUnit: strings.TrimSpace(dr.ServingSizeUnit),
	}
	for _, n := range dr.FoodNutrients {
		assignNutrient(&c, n.Nutrient.ID, n.Amount)
	}
	for _, p := range dr.FoodPortions {
		desc := strings.TrimSpace(p.PortionDescription)
		if desc == "" {
			desc = strings.TrimSpace(p.Modifier)
		}
		if p.GramWeight > 0 {
			c.Portions = append(c.Portions, CandidatePortion{
				Description: desc,
				GramWeight:  p.GramWeight,
			})
		}
	}
	return c, nil
}

func assignNutrient(c *ExternalCandidate, id int64, value float64) {
	switch id {
	case nutrientEnergy:
		c.Calories = value
	case nutrientProtein:
		c.Protein = value
	case nutrientCarbs:
		c.Carbs = value
	case nutrientFat:
		c.Fat = value
	case nutrientFiber:
		c.Fiber = value
	case nutrientSugar:
		c.Sugar = value
	}
}
