package services

import "strings"

// Reference gram weights for common produce, keyed by canonical name and
// unit. Values are edible weight for one unit. Immutable reference data,
// read concurrently by every extraction request.
var produceWeights = map[string]map[string]float64{
	"apple":       {"piece": 182, "cup": 125},
	"banana":      {"piece": 118, "cup": 150},
	"orange":      {"piece": 131, "cup": 180},
	"pear":        {"piece": 178},
	"peach":       {"piece": 150},
	"plum":        {"piece": 66},
	"mango":       {"piece": 207, "cup": 165},
	"kiwi":        {"piece": 69},
	"lemon":       {"piece": 58},
	"lime":        {"piece": 67},
	"avocado":     {"piece": 150, "cup": 146},
	"strawberry":  {"piece": 12, "cup": 152},
	"blueberry":   {"cup": 148},
	"raspberry":   {"cup": 123},
	"grape":       {"piece": 5, "cup": 151},
	"watermelon":  {"cup": 152},
	"pineapple":   {"cup": 165},
	"cherry":      {"piece": 8, "cup": 138},
	"tomato":      {"piece": 123, "cup": 149},
	"potato":      {"piece": 213},
	"sweet potato": {"piece": 130},
	"onion":       {"piece": 110, "cup": 160},
	"garlic":      {"clove": 3, "piece": 3},
	"carrot":      {"piece": 61, "cup": 128},
	"celery":      {"stalk": 40, "cup": 101},
	"cucumber":    {"piece": 301, "cup": 119},
	"zucchini":    {"piece": 196, "cup": 124},
	"bell pepper": {"piece": 119, "cup": 92},
	"broccoli":    {"cup": 91, "head": 608},
	"cauliflower": {"cup": 107, "head": 588},
	"spinach":     {"cup": 30},
	"kale":        {"cup": 21},
	"lettuce":     {"cup": 47, "head": 539},
	"cabbage":     {"cup": 89, "head": 908},
	"mushroom":    {"piece": 18, "cup": 70},
	"corn":        {"ear": 90, "cup": 145},
	"green bean":  {"cup": 100},
	"pea":         {"cup": 145},
	"asparagus":   {"spear": 16, "cup": 134},
	"eggplant":    {"piece": 458, "cup": 82},
	"beet":        {"piece": 82, "cup": 136},
	"radish":      {"piece": 4.5, "cup": 116},
	"ginger":      {"piece": 11},
	"scallion":    {"piece": 15},
}

// Per-name defaults used when the unit is unknown: one typical piece (or
// one cup for loose produce).
var produceDefaultUnits = map[string]string{
	"strawberry": "cup",
	"blueberry":  "cup",
	"raspberry":  "cup",
	"grape":      "cup",
	"watermelon": "cup",
	"pineapple":  "cup",
	"cherry":     "cup",
	"spinach":    "cup",
	"kale":       "cup",
	"lettuce":    "cup",
	"cabbage":    "cup",
	"broccoli":   "cup",
	"cauliflower": "cup",
	"green bean": "cup",
	"pea":        "cup",
	"corn":       "cup",
	"garlic":     "clove",
	"celery":     "stalk",
	"asparagus":  "spear",
}

var produceUnitAliases = map[string]string{
	"pc": "piece", "pcs": "piece", "pieces": "piece", "unit": "piece",
	"units": "piece", "whole": "piece", "each": "piece", "ea": "piece",
	"medium": "piece", "large": "piece", "small": "piece",
	"cups": "cup", "c": "cup",
	"cloves": "clove",
	"stalks": "stalk", "rib": "stalk", "ribs": "stalk",
	"heads": "head",
	"ears": "ear",
	"spears": "spear",
	"bunch": "head", "bunches": "head",
}

// lookupProduceWeight resolves (name, unit) against the reference table:
// exact unit first, then the name's default unit. Returns grams for one
// unit of the item.
func lookupProduceWeight(name, unit string) (float64, bool) {
	canonical := normalizeProduceName(name)
	units, ok := produceWeights[canonical]
	if !ok {
		return 0, false
	}

	if u := normalizeProduceUnit(unit); u != "" {
		if g, ok := units[u]; ok {
			return g, true
		}
	}

	// Unit-agnostic default.
	def := produceDefaultUnits[canonical]
	if def == "" {
		def = "piece"
	}
	if g, ok := units[def]; ok {
		return g, true
	}
	return 0, false
}

// normalizeProduceName lowercases, trims and singularizes common plural
// forms so "Tomatoes" and "tomato" hit the same table row.
func normalizeProduceName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.Join(strings.Fields(n), " ")
	if _, ok := produceWeights[n]; ok {
		return n
	}
	return singularize(n)
}

func singularize(n string) string {
	switch {
	case strings.HasSuffix(n, "ies"):
		return strings.TrimSuffix(n, "ies") + "y"
	case strings.HasSuffix(n, "oes"):
		return strings.TrimSuffix(n, "es")
	case strings.HasSuffix(n, "shes"), strings.HasSuffix(n, "ches"):
		return strings.TrimSuffix(n, "es")
	case strings.HasSuffix(n, "s") && !strings.HasSuffix(n, "ss"):
		return strings.TrimSuffix(n, "s")
	}
	return n
}

func normalizeProduceUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return ""
	}
	if alias, ok := produceUnitAliases[u]; ok {
		return alias
	}
	return u
}
