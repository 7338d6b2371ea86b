package services

import (
	"fmt"
	"strings"

	"github.com/shredstack/fuel-rx-sub006/logger"
	"github.com/shredstack/fuel-rx-sub006/models"
	"github.com/shredstack/fuel-rx-sub006/utils"

	"gorm.io/gorm"
)

// Match confidence assigned to imports: verified source data vs records the
// user has overridden by hand.
const (
	importConfidenceVerified   = 0.9
	importConfidenceOverridden = 0.5
)

type externalDetailFetcher interface {
	GetDetails(externalID string) (ExternalCandidate, error)
}

// ImportService materializes an external candidate into the local catalog
// on first use.
type ImportService struct {
	db  *gorm.DB
	fdc externalDetailFetcher
}

func NewImportService(db *gorm.DB, fdc externalDetailFetcher) *ImportService {
	return &ImportService{db: db, fdc: fdc}
}

// ImportOverrides are user-supplied replacements for the fetched values.
// Any non-nil field replaces the computed value outright and marks the
// record unvalidated.
type ImportOverrides struct {
	Name     *string
	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
}

func (o ImportOverrides) any() bool {
	return o.Name != nil || o.Calories != nil || o.Protein != nil || o.Carbs != nil || o.Fat != nil
}

// Import materializes the candidate with this external id as a catalog
// entry plus nutrition record. Idempotent on the external id: a second
// import returns the first-created pair unchanged, overrides ignored.
// The returned bool is true when a new record was created.
func (s *ImportService) Import(externalID, category string, ownerID uint, ov ImportOverrides) (*models.Ingredient, *models.NutritionRecord, bool, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, nil, false, fmt.Errorf("external id is required")
	}

	if ing, rec, err := s.findImported(externalID); err != nil {
		return nil, nil, false, err
	} else if rec != nil {
		return ing, rec, false, nil
	}

	// No partial records: the detail fetch happens before anything is
	// written, and entry + record are created in one transaction.
	detail, err := s.fdc.GetDetails(externalID)
	if err != nil {
		return nil, nil, false, err
	}

	name := detail.Description
	if ov.Name != nil && strings.TrimSpace(*ov.Name) != "" {
		name = strings.TrimSpace(*ov.Name)
	}
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, nil, false, fmt.Errorf("candidate %s has no usable name", externalID)
	}

	if !models.ValidCategory(category) {
		category = models.CategoryOther
	}

	servingSize, servingUnit, scale := resolveServing(detail)

	rec := models.NutritionRecord{
		ServingSize:     servingSize,
		ServingUnit:     servingUnit,
		Calories:        detail.Calories * scale,
		Protein:         detail.Protein * scale,
		Carbs:           detail.Carbs * scale,
		Fat:             detail.Fat * scale,
		Source:          models.SourceUSDA,
		ExternalID:      &externalID,
		MatchStatus:     models.MatchMatched,
		MatchConfidence: importConfidenceVerified,
		Validated:       true,
	}
	if detail.Fiber > 0 {
		fiber := detail.Fiber * scale
		rec.Fiber = &fiber
	}
	if detail.Sugar > 0 {
		sugar := detail.Sugar * scale
		rec.Sugar = &sugar
	}

	if ov.Calories != nil {
		rec.Calories = *ov.Calories
	}
	if ov.Protein != nil {
		rec.Protein = *ov.Protein
	}
	if ov.Carbs != nil {
		rec.Carbs = *ov.Carbs
	}
	if ov.Fat != nil {
		rec.Fat = *ov.Fat
	}
	if ov.any() {
		// Overridden data is less trustworthy than verified source data.
		rec.Validated = false
		rec.MatchConfidence = importConfidenceOverridden
	}

	assessment := utils.ScoreFoodHealth(
		utils.ClassifyDataTier(detail.DataType),
		detail.IngredientsText,
		utils.MacroSample{Protein: detail.Protein, Fiber: detail.Fiber, Sugar: detail.Sugar},
	)

	var ing models.Ingredient
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Ingredient
		findErr := tx.Where("normalized_name = ?", normalized).First(&existing).Error
		switch findErr {
		case nil:
			// Same display name already in the catalog: attach the new
			// record and refresh the entry's health score.
			ing = existing
			ing.HealthScore = &assessment.Score
			if err := tx.Model(&ing).Update("health_score", assessment.Score).Error; err != nil {
				return err
			}
		case gorm.ErrRecordNotFound:
			ing = models.Ingredient{
				Name:           name,
				NormalizedName: normalized,
				Category:       category,
				HealthScore:    &assessment.Score,
				SourceOwnerID:  ownerIDOrNil(ownerID),
			}
			if err := tx.Create(&ing).Error; err != nil {
				return err
			}
		default:
			return findErr
		}

		rec.IngredientID = ing.ID
		return tx.Create(&rec).Error
	})
	if err != nil {
		// A concurrent import of the same id loses the race on the unique
		// external_id index; resolve it as the idempotent case.
		if ing2, rec2, ferr := s.findImported(externalID); ferr == nil && rec2 != nil {
			logger.Info("Concurrent import resolved idempotently", "external_id", externalID)
			return ing2, rec2, false, nil
		}
		return nil, nil, false, fmt.Errorf("import candidate %s: %w", externalID, err)
	}

	return &ing, &rec, true, nil
}

func (s *ImportService) findImported(externalID string) (*models.Ingredient, *models.NutritionRecord, error) {
	var rec models.NutritionRecord
	err := s.db.Where("external_id = ?", externalID).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup imported record: %w", err)
	}

	var ing models.Ingredient
	if err := s.db.First(&ing, rec.IngredientID).Error; err != nil {
		return nil, nil, fmt.Errorf("lookup imported ingredient: %w", err)
	}
	return &ing, &rec, nil
}

// resolveServing picks the serving for the new record: the candidate's
// declared mass/volume serving (scaling per-100 nutrients to it), else its
// first discrete portion, else 100 g.
func resolveServing(detail ExternalCandidate) (size float64, unit string, scale float64) {
	if detail.ServingSize > 0 {
		if u, ok := massVolumeUnit(detail.ServingSizeUnit); ok {
			return detail.ServingSize, u, detail.ServingSize / 100
		}
	}
	if len(detail.Portions) > 0 && detail.Portions[0].GramWeight > 0 {
		return detail.Portions[0].GramWeight, "g", detail.Portions[0].GramWeight / 100
	}
	return 100, "g", 1
}

func massVolumeUnit(unit string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "grm", "gram", "grams":
		return "g", true
	case "ml", "mlt", "milliliter", "milliliters":
		return "ml", true
	}
	return "", false
}

func ownerIDOrNil(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
