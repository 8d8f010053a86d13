package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"pine-backend/internal/api"
	"pine-backend/internal/config"
	"pine-backend/internal/llm"
	"pine-backend/internal/mailer"
	"pine-backend/internal/pipeline"
	"pine-backend/internal/sheets"
	"pine-backend/internal/store"
	"pine-backend/internal/webhook"
	"pine-backend/internal/ws"
)

func main() {
	cfg := config.LoadConfig()
	cfg.LogEnvCheck()

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	leadPipeline := &pipeline.Pipeline{
		Generator: llm.NewClient(cfg),
	}

	sheetsClient, err := sheets.NewClient(context.Background(), cfg)
	if err != nil {
		log.Printf("Google Sheets client init failed, ledger disabled: %v", err)
	} else if sheetsClient == nil {
		log.Println("Google Sheets auth not fully configured; skipping Sheets client init.")
	} else {
		leadPipeline.Ledger = sheetsClient
	}

	leadStore, err := store.Open(cfg)
	if err != nil {
		log.Printf("Lead archive unavailable: %v", err)
		leadStore = nil
	} else {
		leadPipeline.Archive = leadStore
	}

	if m := mailer.New(cfg); m != nil {
		m.Verify()
		leadPipeline.Notifier = m
	}

	hub := ws.NewHub()
	go hub.Run()
	leadPipeline.Feed = hub

	webhookHandler := webhook.NewHandler(cfg, leadPipeline)
	leadHandler := api.NewLeadHandler(leadStore)

	r.GET("/", webhookHandler.Health)
	r.GET("/debug", webhookHandler.Debug)
	r.POST("/webhook/website", webhookHandler.HandleWebsiteLead)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/contact", webhookHandler.ContactUsage)
		apiGroup.POST("/contact", webhookHandler.HandleContact)
		apiGroup.GET("/leads", leadHandler.GetLeads)
		apiGroup.GET("/leads/export", leadHandler.ExportLeads)
	}

	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
