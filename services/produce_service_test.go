package services

import (
	"fmt"
	"testing"
)

type fakeEstimator struct {
	estimates []WeightEstimate
	err       error
	calls     int
	lastBatch []ProduceItem
}

func (f *fakeEstimator) EstimateProduceWeights(items []ProduceItem) ([]WeightEstimate, error) {
	f.calls++
	f.lastBatch = items
	return f.estimates, f.err
}

func TestResolveWeightsDeterministicHit(t *testing.T) {
	est := &fakeEstimator{}
	svc := NewProduceService(est)

	out := svc.ResolveWeights([]ProduceItem{
		{Name: "Apple", Amount: 2, Unit: "pieces", Category: "fruit"},
	})

	got := out[0]
	if got.Method != ResolutionDeterministic {
		t.Fatalf("expected deterministic resolution, got %s", got.Method)
	}
	if got.Grams != 364 {
		t.Fatalf("expected 2*182 grams, got %f", got.Grams)
	}
	if est.calls != 0 {
		t.Fatal("deterministic hits must not call the estimator")
	}
}

func TestResolveWeightsSingularizesAndDefaultsUnit(t *testing.T) {
	svc := NewProduceService(&fakeEstimator{})

	out := svc.ResolveWeights([]ProduceItem{
		{Name: "Tomatoes", Amount: 3, Unit: "", Category: "vegetable"},
		{Name: "strawberries", Amount: 1, Unit: "cup", Category: "fruit"},
	})

	if out[0].Method != ResolutionDeterministic || out[0].Grams != 369 {
		t.Fatalf("tomatoes: expected 3*123 deterministic, got %+v", out[0])
	}
	if out[1].Method != ResolutionDeterministic || out[1].Grams != 152 {
		t.Fatalf("strawberries: expected 152 g per cup, got %+v", out[1])
	}
}

func TestResolveWeightsBatchesUnresolvedItems(t *testing.T) {
	est := &fakeEstimator{estimates: []WeightEstimate{
		{Name: "Dragon Fruit", Grams: 600},
		{Name: "rambutan", Grams: 31},
	}}
	svc := NewProduceService(est)

	out := svc.ResolveWeights([]ProduceItem{
		{Name: "apple", Amount: 1, Unit: "piece", Category: "fruit"},
		{Name: "dragon fruit", Amount: 1, Unit: "piece", Category: "fruit"},
		{Name: "Rambutan", Amount: 3, Unit: "pieces", Category: "fruit"},
	})

	if est.calls != 1 {
		t.Fatalf("all misses must go out in one batch call, got %d calls", est.calls)
	}
	if len(est.lastBatch) != 2 {
		t.Fatalf("expected 2 items in batch, got %d", len(est.lastBatch))
	}
	// Joined back by case-insensitive name.
	if out[1].Method != ResolutionEstimated || out[1].Grams != 600 {
		t.Fatalf("dragon fruit: %+v", out[1])
	}
	if out[2].Method != ResolutionEstimated || out[2].Grams != 31 {
		t.Fatalf("rambutan: %+v", out[2])
	}
}

func TestResolveWeightsEstimatorFailureFallsBack(t *testing.T) {
	est := &fakeEstimator{err: fmt.Errorf("%w: timeout", ErrExternalUnavailable)}
	svc := NewProduceService(est)

	items := []ProduceItem{
		{Name: "durian", Amount: 1, Unit: "piece", Category: "fruit"},
		{Name: "jackfruit", Amount: 1, Unit: "piece", Category: "fruit"},
	}
	out := svc.ResolveWeights(items)

	if len(out) != len(items) {
		t.Fatalf("every input index must resolve, got %d of %d", len(out), len(items))
	}
	for i := range items {
		if out[i].Method != ResolutionDefaultFallback || out[i].Grams != 100 {
			t.Fatalf("index %d: expected 100 g default fallback, got %+v", i, out[i])
		}
	}
}

func TestResolveWeightsUnmatchedEstimateFallsBack(t *testing.T) {
	// Estimator answers, but not for this item.
	est := &fakeEstimator{estimates: []WeightEstimate{{Name: "something else", Grams: 50}}}
	svc := NewProduceService(est)

	out := svc.ResolveWeights([]ProduceItem{
		{Name: "starfruit", Amount: 1, Unit: "piece", Category: "fruit"},
	})
	if out[0].Method != ResolutionDefaultFallback || out[0].Grams != 100 {
		t.Fatalf("expected default fallback, got %+v", out[0])
	}
}

func TestLookupProduceWeightUnitAliases(t *testing.T) {
	tests := []struct {
		name, unit string
		want       float64
	}{
		{"garlic", "cloves", 3},
		{"celery", "stalks", 40},
		{"apple", "each", 182},
		{"broccoli", "", 91},
	}
	for _, tt := range tests {
		got, ok := lookupProduceWeight(tt.name, tt.unit)
		if !ok || got != tt.want {
			t.Errorf("%s/%s: expected %f, got %f (ok=%v)", tt.name, tt.unit, tt.want, got, ok)
		}
	}
}
