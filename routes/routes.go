package routes

import (
	"github.com/shredstack/fuel-rx-sub006/config"
	"github.com/shredstack/fuel-rx-sub006/controllers"
	"github.com/shredstack/fuel-rx-sub006/middlewares"
	"github.com/shredstack/fuel-rx-sub006/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	catalogSvc := services.NewCatalogService(config.DB)
	fdcSvc := services.NewFDCService()
	searchSvc := services.NewSearchService(catalogSvc, fdcSvc)
	importSvc := services.NewImportService(config.DB, fdcSvc)
	produceSvc := services.NewProduceService(services.NewLLMService())
	authSvc := services.NewAuthService(config.DB)

	authCtl := controllers.NewAuthController(authSvc)
	ingredientCtl := controllers.NewIngredientController(searchSvc, importSvc, catalogSvc)
	produceCtl := controllers.NewProduceController(produceSvc)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.GET("/me", middlewares.AuthMiddleware(), authCtl.Me)
	}

	// Protected catalog routes
	ingredients := r.Group("/ingredients")
	ingredients.Use(middlewares.AuthMiddleware())
	{
		ingredients.GET("/search", ingredientCtl.Search)
		ingredients.POST("", ingredientCtl.Create)
		ingredients.POST("/import", ingredientCtl.Import)
	}

	produce := r.Group("/produce")
	produce.Use(middlewares.AuthMiddleware())
	{
		produce.POST("/extract", produceCtl.Extract)
	}

	return r
}
