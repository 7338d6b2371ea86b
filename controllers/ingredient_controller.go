package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shredstack/fuel-rx-sub006/models"
	"github.com/shredstack/fuel-rx-sub006/services"

	"github.com/gin-gonic/gin"
)

const maxExternalLimit = 50

type IngredientController struct {
	search   *services.SearchService
	importer *services.ImportService
	catalog  *services.CatalogService
}

func NewIngredientController(search *services.SearchService, importer *services.ImportService, catalog *services.CatalogService) *IngredientController {
	return &IngredientController{search: search, importer: importer, catalog: catalog}
}

// GET /ingredients/search?q=chicken+breast&include_external=true&external_limit=20
func (ctl *IngredientController) Search(c *gin.Context) {
	query := c.Query("q")
	includeExternal := c.Query("include_external") == "true"

	externalLimit := 20
	if raw := c.Query("external_limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			externalLimit = n
		}
	}
	if externalLimit > maxExternalLimit {
		externalLimit = maxExternalLimit
	}

	result, err := ctl.search.Search(query, includeExternal, externalLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	if !includeExternal {
		// Backward-compatible shape for callers that only know the local
		// catalog.
		c.JSON(http.StatusOK, gin.H{"results": result.Local})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"local_results":            result.Local,
		"external_results":         result.External,
		"local_count":              len(result.Local),
		"external_count":           len(result.External),
		"external_total_available": result.ExternalTotal,
	})
}

type ImportInput struct {
	ExternalID       string   `json:"external_id" binding:"required"`
	Category         string   `json:"category"`
	NameOverride     *string  `json:"name_override"`
	CaloriesOverride *float64 `json:"calories_override"`
	ProteinOverride  *float64 `json:"protein_override"`
	CarbsOverride    *float64 `json:"carbs_override"`
	FatOverride      *float64 `json:"fat_override"`
}

// POST /ingredients/import
func (ctl *IngredientController) Import(c *gin.Context) {
	var input ImportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ing, rec, created, err := ctl.importer.Import(input.ExternalID, input.Category, currentUserID(c), services.ImportOverrides{
		Name:     input.NameOverride,
		Calories: input.CaloriesOverride,
		Protein:  input.ProteinOverride,
		Carbs:    input.CarbsOverride,
		Fat:      input.FatOverride,
	})
	if err != nil {
		if errors.Is(err, services.ErrExternalUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "nutrition database unavailable, try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, importedIngredientResponse(ing, rec))
}

func importedIngredientResponse(ing *models.Ingredient, rec *models.NutritionRecord) gin.H {
	return gin.H{
		"id":               ing.ID,
		"name":             ing.Name,
		"category":         ing.Category,
		"health_score":     ing.HealthScore,
		"serving_size":     rec.ServingSize,
		"serving_unit":     rec.ServingUnit,
		"calories":         rec.Calories,
		"protein":          rec.Protein,
		"carbs":            rec.Carbs,
		"fat":              rec.Fat,
		"fiber":            rec.Fiber,
		"sugar":            rec.Sugar,
		"source":           rec.Source,
		"external_id":      rec.ExternalID,
		"validated":        rec.Validated,
		"match_confidence": rec.MatchConfidence,
	}
}

type ManualIngredientInput struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category"`
	ServingSize float64  `json:"serving_size" binding:"required,gt=0"`
	ServingUnit string   `json:"serving_unit" binding:"required"`
	Calories    float64  `json:"calories" binding:"gte=0"`
	Protein     float64  `json:"protein" binding:"gte=0"`
	Carbs       float64  `json:"carbs" binding:"gte=0"`
	Fat         float64  `json:"fat" binding:"gte=0"`
	Fiber       *float64 `json:"fiber"`
	Sugar       *float64 `json:"sugar"`
}

// POST /ingredients
func (ctl *IngredientController) Create(c *gin.Context) {
	var input ManualIngredientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ing, err := ctl.catalog.CreateManual(currentUserID(c), services.ManualEntryInput{
		Name:        input.Name,
		Category:    input.Category,
		ServingSize: input.ServingSize,
		ServingUnit: input.ServingUnit,
		Calories:    input.Calories,
		Protein:     input.Protein,
		Carbs:       input.Carbs,
		Fat:         input.Fat,
		Fiber:       input.Fiber,
		Sugar:       input.Sugar,
	})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ing)
}

func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
