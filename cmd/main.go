package main

import (
	"github.com/shredstack/fuel-rx-sub006/config"
	"github.com/shredstack/fuel-rx-sub006/logger"
	"github.com/shredstack/fuel-rx-sub006/routes"
)

func main() {
	logger.Init()
	config.InitDB()
	r := routes.SetupRouter()
	r.Run(":" + config.GetEnv("PORT", "8080"))
}
