package services

import "strings"

// Common misspellings and receipt-style abbreviations seen in food queries,
// applied per token so "chkn brest" becomes "chicken breast".
var spellingFixes = map[string]string{
	"chkn":    "chicken",
	"chiken":  "chicken",
	"chicke":  "chicken",
	"brest":   "breast",
	"brst":    "breast",
	"bnls":    "boneless",
	"sknls":   "skinless",
	"tomatoe": "tomato",
	"potatoe": "potato",
	"brocoli": "broccoli",
	"bannana": "banana",
	"avacado": "avocado",
	"yoghurt": "yogurt",
	"yogart":  "yogurt",
	"chse":    "cheese",
	"mlk":     "milk",
	"brd":     "bread",
	"veg":     "vegetable",
	"grnd":    "ground",
	"org":     "organic",
	"whl":     "whole",
}

// Unit words and stopwords that carry no signal for food matching.
var queryStopwords = map[string]bool{
	"of": true, "the": true, "a": true, "an": true, "and": true,
	"with": true, "in": true, "for": true, "some": true,
	"g": true, "gram": true, "grams": true, "kg": true,
	"mg": true, "oz": true, "ounce": true, "ounces": true,
	"lb": true, "lbs": true, "pound": true, "pounds": true,
	"ml": true, "l": true, "liter": true, "litre": true,
	"cup": true, "cups": true, "tbsp": true, "tsp": true,
	"tablespoon": true, "teaspoon": true,
	"slice": true, "slices": true, "piece": true, "pieces": true,
	"serving": true, "servings": true,
}

// NormalizeQuery cleans a raw search string: trims, lowercases, fixes common
// misspellings and drops unit/stopword tokens. Returns the cleaned query and
// its token list. Deterministic and side-effect-free.
func NormalizeQuery(raw string) (string, []string) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))

	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if tok == "" {
			continue
		}
		if fixed, ok := spellingFixes[tok]; ok {
			tok = fixed
		}
		if queryStopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}

	return strings.Join(tokens, " "), tokens
}
