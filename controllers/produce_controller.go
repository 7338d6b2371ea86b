package controllers

import (
	"net/http"

	"github.com/shredstack/fuel-rx-sub006/services"

	"github.com/gin-gonic/gin"
)

type ProduceController struct {
	produce *services.ProduceService
}

func NewProduceController(produce *services.ProduceService) *ProduceController {
	return &ProduceController{produce: produce}
}

type ExtractProduceInput struct {
	Ingredients []struct {
		Name            string  `json:"name" binding:"required"`
		EstimatedAmount float64 `json:"estimated_amount"`
		EstimatedUnit   string  `json:"estimated_unit"`
		Category        string  `json:"category"`
	} `json:"ingredients" binding:"required"`
}

type ProduceIngredientOutput struct {
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	EstimatedGrams float64 `json:"estimated_grams"`
	Resolution     string  `json:"resolution"`
}

// POST /produce/extract
//
// Filters the payload down to fruit/vegetable items and resolves each to a
// gram weight. An empty produce list short-circuits without calling any
// collaborator.
func (ctl *ProduceController) Extract(c *gin.Context) {
	var input ExtractProduceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]services.ProduceItem, 0, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		if !services.IsProduceCategory(ing.Category) {
			continue
		}
		items = append(items, services.ProduceItem{
			Name:     ing.Name,
			Amount:   ing.EstimatedAmount,
			Unit:     ing.EstimatedUnit,
			Category: ing.Category,
		})
	}

	if len(items) == 0 {
		c.JSON(http.StatusOK, gin.H{"produce_ingredients": []ProduceIngredientOutput{}})
		return
	}

	resolved := ctl.produce.ResolveWeights(items)

	out := make([]ProduceIngredientOutput, 0, len(items))
	for i, it := range items {
		res := resolved[i]
		out = append(out, ProduceIngredientOutput{
			Name:           it.Name,
			Amount:         it.Amount,
			Unit:           it.Unit,
			Category:       it.Category,
			EstimatedGrams: res.Grams,
			Resolution:     res.Method,
		})
	}

	c.JSON(http.StatusOK, gin.H{"produce_ingredients": out})
}
