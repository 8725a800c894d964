package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"voyago/config"
	"voyago/handlers"
	"voyago/middleware"
	"voyago/services/crm"
	"voyago/services/dialog"
	"voyago/utils"
)

// RegisterChatRoutes registers the conversation endpoints.
func RegisterChatRoutes(r *gin.Engine, dialogSvc dialog.Service) {
	api := r.Group("/api/v1/chat")
	{
		api.POST("", handlers.ChatTurnHandler(dialogSvc))
		api.GET("/:id/history", handlers.ChatHistoryHandler(dialogSvc))
		api.DELETE("/:id", handlers.ChatResetHandler(dialogSvc))
	}
}

// RegisterAdminRoutes sets up endpoints for manager operations.
func RegisterAdminRoutes(r *gin.Engine, leadSvc crm.Service) {
	adminGroup := r.Group("/api/v1/admin")
	{
		adminGroup.Use(middleware.AdminKeyMiddleware())
		adminGroup.GET("/leads", handlers.ListLeadsHandler(leadSvc))
		adminGroup.GET("/leads/count", handlers.CountLeadsHandler(leadSvc))
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, dialogSvc dialog.Service, leadSvc crm.Service) {
	r.Use(cors.New(corsConfig()))

	RegisterChatRoutes(r, dialogSvc)
	RegisterAdminRoutes(r, leadSvc)
	RegisterHealthRoute(r)
}

// corsConfig builds the CORS policy from CORS_ORIGINS. A wildcard origin
// disables credentials; named origins allow them.
func corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", utils.AdminKeyHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	var origins []string
	for _, o := range strings.Split(config.AppConfig.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}

	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
