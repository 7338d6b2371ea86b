package services

import (
	"strings"

	"github.com/shredstack/fuel-rx-sub006/logger"
)

// How an item's gram weight was resolved.
const (
	ResolutionDeterministic   = "deterministic"
	ResolutionEstimated       = "estimated"
	ResolutionDefaultFallback = "default_fallback"
)

// Hard default when neither the reference table nor the estimation service
// can answer.
const defaultProduceGrams = 100.0

// ProduceItem is one fruit/vegetable line to resolve to grams.
type ProduceItem struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

// WeightResolution is the resolved gram weight for one input item.
type WeightResolution struct {
	Grams  float64 `json:"grams"`
	Method string  `json:"method"`
}

type weightEstimator interface {
	EstimateProduceWeights(items []ProduceItem) ([]WeightEstimate, error)
}

type ProduceService struct {
	estimator weightEstimator
}

func NewProduceService(estimator weightEstimator) *ProduceService {
	return &ProduceService{estimator: estimator}
}

// ResolveWeights resolves every input item to grams, keyed by input index.
// Order of attempts per item: deterministic table lookup, then one batched
// estimation call for all misses, then the hard 100 g default. Every index
// receives a result even under total external failure.
func (s *ProduceService) ResolveWeights(items []ProduceItem) map[int]WeightResolution {
	out := make(map[int]WeightResolution, len(items))

	unresolved := make([]int, 0, len(items))
	for i, it := range items {
		grams, ok := lookupProduceWeight(it.Name, it.Unit)
		if !ok {
			unresolved = append(unresolved, i)
			continue
		}
		amount := it.Amount
		if amount <= 0 {
			amount = 1
		}
		out[i] = WeightResolution{Grams: grams * amount, Method: ResolutionDeterministic}
	}

	if len(unresolved) > 0 {
		batch := make([]ProduceItem, 0, len(unresolved))
		for _, i := range unresolved {
			batch = append(batch, items[i])
		}

		estimates, err := s.estimator.EstimateProduceWeights(batch)
		if err != nil {
			logger.Warn("Produce weight estimation failed, falling back to defaults", "items", len(batch), "error", err)
		} else {
			byName := make(map[string]float64, len(estimates))
			for _, e := range estimates {
				byName[strings.ToLower(strings.TrimSpace(e.Name))] = e.Grams
			}
			for _, i := range unresolved {
				if grams, ok := byName[strings.ToLower(strings.TrimSpace(items[i].Name))]; ok {
					out[i] = WeightResolution{Grams: grams, Method: ResolutionEstimated}
				}
			}
		}
	}

	// Output contract: every index resolved.
	for i := range items {
		if _, ok := out[i]; !ok {
			out[i] = WeightResolution{Grams: defaultProduceGrams, Method: ResolutionDefaultFallback}
		}
	}
	return out
}

// IsProduceCategory reports whether a category takes part in weight
// resolution.
func IsProduceCategory(category string) bool {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "fruit", "vegetable":
		return true
	}
	return false
}
