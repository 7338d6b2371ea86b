package models

import "gorm.io/gorm"

// Ingredient categories. "other" is the default for anything we can't place.
const (
	CategoryProtein   = "protein"
	CategoryVegetable = "vegetable"
	CategoryFruit     = "fruit"
	CategoryGrain     = "grain"
	CategoryFat       = "fat"
	CategoryDairy     = "dairy"
	CategoryPantry    = "pantry"
	CategoryOther     = "other"
)

// Where a nutrition record's numbers came from.
const (
	SourceUSDA         = "usda"
	SourceLLMEstimated = "llm_estimated"
	SourceUserEntered  = "user_entered"
)

// Match status of a nutrition record against its external source.
const (
	MatchPending = "pending"
	MatchMatched = "matched"
	MatchNoMatch = "no_match"
)

// Ingredient is a catalog entry. NormalizedName is the uniqueness key among
// live (non-deleted) rows; rows are only ever soft-deleted so historical
// meal references stay valid.
type Ingredient struct {
	gorm.Model
	Name           string `gorm:"not null" json:"name"`
	NormalizedName string `gorm:"type:varchar(255);uniqueIndex;not null" json:"normalized_name"`
	Category       string `gorm:"type:varchar(32);not null;default:'other'" json:"category"`
	HealthScore    *int   `json:"health_score,omitempty"`
	IsUserAdded    bool   `gorm:"default:false" json:"is_user_added"`
	SourceOwnerID  *uint  `gorm:"index" json:"source_owner_id,omitempty"`

	Nutrition []NutritionRecord `json:"nutrition,omitempty"`
}

// NutritionRecord holds per-serving macros for one ingredient. ExternalID is
// the FDC identifier when the record was imported; at most one record may
// carry a given external id.
type NutritionRecord struct {
	gorm.Model
	IngredientID uint    `gorm:"not null;index" json:"ingredient_id"`
	ServingSize  float64 `gorm:"not null" json:"serving_size"`
	ServingUnit  string  `gorm:"type:varchar(32);not null" json:"serving_unit"`

	Calories float64  `gorm:"not null" json:"calories"`
	Protein  float64  `gorm:"not null" json:"protein"`
	Carbs    float64  `gorm:"not null" json:"carbs"`
	Fat      float64  `gorm:"not null" json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`

	Source          string  `gorm:"type:varchar(32);not null" json:"source"`
	ExternalID      *string `gorm:"type:varchar(64);uniqueIndex" json:"external_id,omitempty"`
	MatchStatus     string  `gorm:"type:varchar(16);not null;default:'pending'" json:"match_status"`
	MatchConfidence float64 `gorm:"not null;default:0" json:"match_confidence"`
	Validated       bool    `gorm:"default:false" json:"validated"`
}

// ValidCategory reports whether c is one of the known category buckets.
func ValidCategory(c string) bool {
	switch c {
	case CategoryProtein, CategoryVegetable, CategoryFruit, CategoryGrain,
		CategoryFat, CategoryDairy, CategoryPantry, CategoryOther:
		return true
	}
	return false
}
