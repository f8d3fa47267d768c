package router

import (
	"github.com/gin-gonic/gin"

	"gapradar.app/engine/internal/http/handler"
)

type RouterConfig struct {
	AdminAPIKey  string
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, ingestHandler *handler.PostIngestHandler, postHandler *handler.PostHandler, oppHandler *handler.OpportunityHandler, enrichHandler *handler.EnrichmentHandler, adminHandler *handler.AdminHandler, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/posts", ingestHandler.Ingest)
		v1.GET("/posts/:id", postHandler.Get)
		v1.GET("/posts/:id/analysis", postHandler.GetAnalysis)

		v1.GET("/opportunities", oppHandler.List)
		v1.GET("/opportunities/:id", oppHandler.Get)
		v1.GET("/opportunities/:id/evidence", oppHandler.ListEvidence)
		v1.GET("/opportunities/:id/competitors", oppHandler.ListCompetitors)
		v1.GET("/opportunities/:id/signals", enrichHandler.GetCommunitySignal)

		v1.POST("/opportunities/:id/market", enrichHandler.UpsertMarketSnapshot)
		v1.POST("/opportunities/:id/competitors", enrichHandler.UpsertCompetitor)
		v1.POST("/opportunities/:id/signals", enrichHandler.UpsertCommunitySignal)

		v1.GET("/scrapers", adminHandler.ListScraperRuns)

		v1.POST("/pipeline/run", adminHandler.RequireKey, adminHandler.RunPipeline)
		v1.POST("/opportunities/:id/archive", adminHandler.RequireKey, adminHandler.ArchiveOpportunity)
	}
}
