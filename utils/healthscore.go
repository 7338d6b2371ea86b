package utils

import "strings"

// Data classification tiers of the external food database. Reference-tier
// records are lab-analyzed whole foods; survey-tier records come from dietary
// survey recipes; branded records are manufacturer-submitted labels.
type DataTier string

const (
	TierReference DataTier = "reference"
	TierSurvey    DataTier = "survey"
	TierBranded   DataTier = "branded"
	TierUnknown   DataTier = "unknown"
)

// Processing categories derived from the final score.
const (
	ProcessingWhole            = "whole"
	ProcessingMinimal          = "minimally_processed"
	ProcessingHealthy          = "healthy_processed"
	ProcessingHeavilyProcessed = "heavily_processed"
)

// HealthFactors are the boolean signals behind a score, surfaced so the UI
// can explain why a food rated the way it did.
type HealthFactors struct {
	IsWholeFood            bool `json:"is_whole_food"`
	HasShortIngredientList bool `json:"has_short_ingredient_list"`
	NoAdditives            bool `json:"no_additives"`
	GoodMacroProfile       bool `json:"good_macro_profile"`
}

// HealthAssessment is the full output of the scoring engine.
type HealthAssessment struct {
	Score    int           `json:"score"`
	Category string        `json:"category"`
	Factors  HealthFactors `json:"factors"`
}

// MacroSample carries the per-100-unit macros the engine looks at.
type MacroSample struct {
	Protein float64
	Fiber   float64
	Sugar   float64
}

// Additive/preservative keywords flagged in ingredient lists. Matched
// case-insensitively as substrings.
var additiveKeywords = []string{
	"high fructose corn syrup",
	"corn syrup",
	"partially hydrogenated",
	"monosodium glutamate",
	"sodium nitrite",
	"sodium benzoate",
	"potassium sorbate",
	"artificial flavor",
	"artificial colour",
	"artificial color",
	"aspartame",
	"sucralose",
	"acesulfame",
	"red 40",
	"yellow 5",
	"blue 1",
	"tbhq",
	"bha",
	"bht",
}

// ClassifyDataTier maps a raw external dataType string onto a tier.
func ClassifyDataTier(dataType string) DataTier {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case dt == "":
		return TierUnknown
	case strings.Contains(dt, "foundation") || strings.Contains(dt, "sr legacy"):
		return TierReference
	case strings.Contains(dt, "survey") || strings.Contains(dt, "fndds"):
		return TierSurvey
	case strings.Contains(dt, "branded"):
		return TierBranded
	}
	return TierUnknown
}

// ScoreFoodHealth rates how minimally processed a food looks, on a 0-100
// scale, from its data tier, ingredient list and macro profile. Pure and
// deterministic; identical inputs always produce identical output.
func ScoreFoodHealth(tier DataTier, ingredientsText string, macros MacroSample) HealthAssessment {
	factors := HealthFactors{NoAdditives: true}

	// 1) Base by classification tier.
	score := 50
	switch tier {
	case TierReference:
		score = 85
		factors.IsWholeFood = true
		factors.HasShortIngredientList = true
	case TierSurvey:
		score = 60
	case TierBranded:
		score = 50
	}

	text := strings.TrimSpace(ingredientsText)
	if text != "" {
		// 2) Ingredient-list length: short lists raise the floor, long
		// lists cap the score.
		n := CountTopLevelIngredients(text)
		switch {
		case n <= 3:
			if score < 75 {
				score = 75
			}
			factors.HasShortIngredientList = true
		case n <= 5:
			if score < 65 {
				score = 65
			}
			factors.HasShortIngredientList = true
		case n <= 10:
			if score > 55 {
				score = 55
			}
		case n <= 15:
			if score > 45 {
				score = 45
			}
		default:
			if score > 35 {
				score = 35
			}
		}

		lower := strings.ToLower(text)
		for _, kw := range additiveKeywords {
			if strings.Contains(lower, kw) {
				score -= 15
				factors.NoAdditives = false
				break
			}
		}
	} else if tier == TierBranded {
		// 3) A branded product without an ingredient list is a negative
		// signal, not a neutral one.
		if score > 50 {
			score = 50
		}
	}

	// 4) Macro adjustment.
	macroAdj := 0
	switch {
	case macros.Protein >= 20:
		macroAdj += 5
	case macros.Protein >= 15:
		macroAdj += 3
	}
	switch {
	case macros.Fiber >= 8:
		macroAdj += 5
	case macros.Fiber >= 5:
		macroAdj += 3
	}
	switch {
	case macros.Sugar >= 30:
		macroAdj -= 15
	case macros.Sugar >= 20:
		macroAdj -= 10
	case macros.Sugar >= 15:
		macroAdj -= 5
	}
	if macroAdj > 0 {
		factors.GoodMacroProfile = true
	}
	score += macroAdj

	// 5) Clamp and categorize.
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return HealthAssessment{
		Score:    score,
		Category: processingCategory(score),
		Factors:  factors,
	}
}

func processingCategory(score int) string {
	switch {
	case score >= 80:
		return ProcessingWhole
	case score >= 60:
		return ProcessingMinimal
	case score >= 40:
		return ProcessingHealthy
	default:
		return ProcessingHeavilyProcessed
	}
}

// CountTopLevelIngredients counts comma-separated ingredients after
// stripping parenthetical and bracketed sub-ingredient lists, so
// "cheese (milk, cultures, salt)" counts as one ingredient.
func CountTopLevelIngredients(text string) int {
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}

	count := 0
	for _, part := range strings.Split(b.String(), ",") {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}
