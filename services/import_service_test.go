package services

import (
	"fmt"
	"math"
	"testing"

	"github.com/shredstack/fuel-rx-sub006/models"
)

type fakeDetailFetcher struct {
	details map[string]ExternalCandidate
	err     error
	calls   int
}

func (f *fakeDetailFetcher) GetDetails(externalID string) (ExternalCandidate, error) {
	f.calls++
	if f.err != nil {
		return ExternalCandidate{}, f.err
	}
	d, ok := f.details[externalID]
	if !ok {
		return ExternalCandidate{}, fmt.Errorf("%w: unknown id %s", ErrExternalUnavailable, externalID)
	}
	return d, nil
}

func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func appleDetail() ExternalCandidate {
	return ExternalCandidate{
		ExternalID:      "171688",
		Description:     "Apples, raw, with skin",
		DataType:        "SR Legacy",
		Calories:        52,
		Protein:         0.3,
		Carbs:           13.8,
		Fat:             0.2,
		Fiber:           2.4,
		Sugar:           10.4,
		ServingSize:     55,
		ServingSizeUnit: "GRM",
	}
}

func TestImportCreatesEntryAndRecord(t *testing.T) {
	db := openTestDB(t)
	fetcher := &fakeDetailFetcher{details: map[string]ExternalCandidate{"171688": appleDetail()}}
	svc := NewImportService(db, fetcher)

	ing, rec, created, err := svc.Import("171688", "fruit", 7, ImportOverrides{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !created {
		t.Fatal("first import must create")
	}
	if ing.NormalizedName != "apples, raw, with skin" {
		t.Fatalf("normalized name = %q", ing.NormalizedName)
	}
	if ing.Category != "fruit" {
		t.Fatalf("category = %q", ing.Category)
	}
	if ing.HealthScore == nil {
		t.Fatal("health score must be assessed on import")
	}

	// Per-100 nutrients scaled to the declared 55 g serving.
	if rec.ServingSize != 55 || rec.ServingUnit != "g" {
		t.Fatalf("serving = %f %s", rec.ServingSize, rec.ServingUnit)
	}
	if !closeTo(rec.Calories, 52*0.55) {
		t.Fatalf("calories = %f", rec.Calories)
	}
	if rec.Fiber == nil || !closeTo(*rec.Fiber, 2.4*0.55) {
		t.Fatalf("fiber = %v", rec.Fiber)
	}
	if rec.Source != models.SourceUSDA || !rec.Validated || rec.MatchConfidence != 0.9 {
		t.Fatalf("record provenance: %+v", rec)
	}
	if rec.ExternalID == nil || *rec.ExternalID != "171688" {
		t.Fatalf("external id = %v", rec.ExternalID)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	fetcher := &fakeDetailFetcher{details: map[string]ExternalCandidate{"171688": appleDetail()}}
	svc := NewImportService(db, fetcher)

	first, firstRec, _, err := svc.Import("171688", "fruit", 7, ImportOverrides{})
	if err != nil {
		t.Fatalf("first import: %v", err)
	}

	// Overrides on a re-import are ignored: the stored pair comes back as is.
	second, secondRec, created, err := svc.Import("171688", "protein", 9, ImportOverrides{
		Name:     strPtr("My Apple"),
		Calories: floatPtr(999),
	})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if created {
		t.Fatal("second import must not create")
	}
	if second.ID != first.ID || secondRec.ID != firstRec.ID {
		t.Fatal("re-import must return the original pair")
	}
	if secondRec.Calories == 999 {
		t.Fatal("re-import must not apply overrides")
	}
	if fetcher.calls != 1 {
		t.Fatalf("re-import must not refetch, got %d calls", fetcher.calls)
	}

	var recCount int64
	db.Model(&models.NutritionRecord{}).Count(&recCount)
	if recCount != 1 {
		t.Fatalf("expected 1 nutrition record, got %d", recCount)
	}
}

func TestImportAttachesToExistingNormalizedName(t *testing.T) {
	db := openTestDB(t)
	catalog := NewCatalogService(db)
	existing, err := catalog.CreateManual(3, ManualEntryInput{
		Name:        "Apples, raw, with skin",
		Category:    "fruit",
		ServingSize: 100,
		ServingUnit: "g",
		Calories:    50,
	})
	if err != nil {
		t.Fatalf("seed manual entry: %v", err)
	}

	fetcher := &fakeDetailFetcher{details: map[string]ExternalCandidate{"171688": appleDetail()}}
	svc := NewImportService(db, fetcher)

	ing, rec, created, err := svc.Import("171688", "fruit", 7, ImportOverrides{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !created {
		t.Fatal("a new record was still created")
	}
	if ing.ID != existing.ID {
		t.Fatalf("must attach to existing entry %d, got %d", existing.ID, ing.ID)
	}
	if rec.IngredientID != existing.ID {
		t.Fatalf("record attached to %d", rec.IngredientID)
	}

	var count int64
	db.Model(&models.Ingredient{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single catalog entry, got %d", count)
	}
}

func TestImportOverridesMarkUnvalidated(t *testing.T) {
	db := openTestDB(t)
	fetcher := &fakeDetailFetcher{details: map[string]ExternalCandidate{"171688": appleDetail()}}
	svc := NewImportService(db, fetcher)

	ing, rec, _, err := svc.Import("171688", "fruit", 7, ImportOverrides{
		Name:     strPtr("Honeycrisp Apple"),
		Calories: floatPtr(60),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if ing.Name != "Honeycrisp Apple" || ing.NormalizedName != "honeycrisp apple" {
		t.Fatalf("name override not applied: %q / %q", ing.Name, ing.NormalizedName)
	}
	if rec.Calories != 60 {
		t.Fatalf("calorie override not applied: %f", rec.Calories)
	}
	if !closeTo(rec.Protein, 0.3*0.55) {
		t.Fatalf("non-overridden macros must stay scaled: %f", rec.Protein)
	}
	if rec.Validated {
		t.Fatal("overridden record must be unvalidated")
	}
	if rec.MatchConfidence != 0.5 {
		t.Fatalf("overridden confidence = %f", rec.MatchConfidence)
	}
}

func TestImportServingFallbacks(t *testing.T) {
	db := openTestDB(t)
	portioned := appleDetail()
	portioned.ExternalID = "200001"
	portioned.Description = "Pears, raw"
	portioned.ServingSize = 0
	portioned.ServingSizeUnit = ""
	portioned.Portions = []CandidatePortion{{Description: "1 medium", GramWeight: 178}}

	bare := appleDetail()
	bare.ExternalID = "200002"
	bare.Description = "Plums, raw"
	bare.ServingSize = 0
	bare.ServingSizeUnit = ""

	fetcher := &fakeDetailFetcher{details: map[string]ExternalCandidate{
		"200001": portioned,
		"200002": bare,
	}}
	svc := NewImportService(db, fetcher)

	_, rec, _, err := svc.Import("200001", "fruit", 0, ImportOverrides{})
	if err != nil {
		t.Fatalf("portioned import: %v", err)
	}
	if rec.ServingSize != 178 || rec.ServingUnit != "g" || !closeTo(rec.Calories, 52*1.78) {
		t.Fatalf("portion serving: %f %s, calories %f", rec.ServingSize, rec.ServingUnit, rec.Calories)
	}

	_, rec, _, err = svc.Import("200002", "fruit", 0, ImportOverrides{})
	if err != nil {
		t.Fatalf("bare import: %v", err)
	}
	if rec.ServingSize != 100 || !closeTo(rec.Calories, 52) {
		t.Fatalf("default serving: %f, calories %f", rec.ServingSize, rec.Calories)
	}
}

func TestImportFetchFailureWritesNothing(t *testing.T) {
	db := openTestDB(t)
	fetcher := &fakeDetailFetcher{err: fmt.Errorf("%w: upstream down", ErrExternalUnavailable)}
	svc := NewImportService(db, fetcher)

	if _, _, _, err := svc.Import("171688", "fruit", 0, ImportOverrides{}); err == nil {
		t.Fatal("expected error when the detail fetch fails")
	}

	var ings, recs int64
	db.Model(&models.Ingredient{}).Count(&ings)
	db.Model(&models.NutritionRecord{}).Count(&recs)
	if ings != 0 || recs != 0 {
		t.Fatalf("no partial rows allowed: %d ingredients, %d records", ings, recs)
	}
}

func TestImportRejectsEmptyID(t *testing.T) {
	db := openTestDB(t)
	svc := NewImportService(db, &fakeDetailFetcher{})

	if _, _, _, err := svc.Import("  ", "fruit", 0, ImportOverrides{}); err == nil {
		t.Fatal("expected error for blank external id")
	}
}
