package services

import (
	"fmt"
	"strings"

	"github.com/shredstack/fuel-rx-sub006/models"
	"github.com/shredstack/fuel-rx-sub006/utils"

	"gorm.io/gorm"
)

// CatalogService owns reads and writes against the local ingredient catalog.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// NormalizeName produces the catalog uniqueness key: lowercased, trimmed,
// inner whitespace collapsed.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}

// SearchLocal finds non-deleted catalog entries whose normalized name
// contains every query token, nutrition preloaded.
func (s *CatalogService) SearchLocal(tokens []string) ([]models.Ingredient, error) {
	if len(tokens) == 0 {
		return []models.Ingredient{}, nil
	}

	q := s.db.Model(&models.Ingredient{}).Preload("Nutrition")
	for _, tok := range tokens {
		q = q.Where("normalized_name LIKE ?", "%"+tok+"%")
	}

	var out []models.Ingredient
	if err := q.Order("name asc").Limit(50).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("local catalog search: %w", err)
	}
	return out, nil
}

// ExistingExternalIDs returns the subset of ids already present on a
// nutrition record, as a set.
func (s *CatalogService) ExistingExternalIDs(ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var existing []string
	err := s.db.Model(&models.NutritionRecord{}).
		Where("external_id IN ?", ids).
		Pluck("external_id", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("lookup imported external ids: %w", err)
	}
	for _, id := range existing {
		out[id] = true
	}
	return out, nil
}

// FindByNormalizedName returns the live catalog entry with that uniqueness
// key, or nil when absent.
func (s *CatalogService) FindByNormalizedName(normalized string) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.Where("normalized_name = ?", normalized).First(&ing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup by normalized name: %w", err)
	}
	return &ing, nil
}

// ManualEntryInput is a user-entered ingredient with its per-serving macros.
type ManualEntryInput struct {
	Name        string
	Category    string
	ServingSize float64
	ServingUnit string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	Fiber       *float64
	Sugar       *float64
}

// CreateManual creates a user-added catalog entry with one user-entered
// nutrition record, in a single transaction. The normalized name must not
// collide with a live entry.
func (s *CatalogService) CreateManual(ownerID uint, in ManualEntryInput) (*models.Ingredient, error) {
	normalized := NormalizeName(in.Name)
	if normalized == "" {
		return nil, fmt.Errorf("ingredient name is required")
	}

	existing, err := s.FindByNormalizedName(normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("ingredient %q already exists", in.Name)
	}

	category := in.Category
	if !models.ValidCategory(category) {
		category = models.CategoryOther
	}

	// User-entered foods have no external classification; score from macros
	// alone on a per-100g basis.
	macros := utils.MacroSample{}
	if in.ServingSize > 0 {
		scale := 100 / in.ServingSize
		macros.Protein = in.Protein * scale
		if in.Fiber != nil {
			macros.Fiber = *in.Fiber * scale
		}
		if in.Sugar != nil {
			macros.Sugar = *in.Sugar * scale
		}
	}
	assessment := utils.ScoreFoodHealth(utils.TierUnknown, "", macros)

	ing := models.Ingredient{
		Name:           strings.TrimSpace(in.Name),
		NormalizedName: normalized,
		Category:       category,
		HealthScore:    &assessment.Score,
		IsUserAdded:    true,
		SourceOwnerID:  &ownerID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ing).Error; err != nil {
			return err
		}
		rec := models.NutritionRecord{
			IngredientID:    ing.ID,
			ServingSize:     in.ServingSize,
			ServingUnit:     in.ServingUnit,
			Calories:        in.Calories,
			Protein:         in.Protein,
			Carbs:           in.Carbs,
			Fat:             in.Fat,
			Fiber:           in.Fiber,
			Sugar:           in.Sugar,
			Source:          models.SourceUserEntered,
			MatchStatus:     models.MatchNoMatch,
			MatchConfidence: 1.0,
			Validated:       true,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		ing.Nutrition = []models.NutritionRecord{rec}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create manual ingredient: %w", err)
	}
	return &ing, nil
}
