package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	// Auth attaches the caller identity: Authenticate or DevAuthenticate.
	Auth   gin.HandlerFunc
	Logger *slog.Logger
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(cfg.Logger))

	// Trusted proxies (the platform sits behind a proxy)
	_ = r.SetTrustedProxies([]string{"0.0.0.0/0"})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader, debugSubjectHead},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	if cfg.Auth != nil {
		api.Use(cfg.Auth)
	}
	{
		api.GET("/health", h.Health)
		api.GET("/hotels", h.Hotels)
		api.GET("/attractions", h.Attractions)
		api.GET("/weather", h.Weather)
	}

	user := api.Group("", RequireUser())
	{
		user.POST("/generate-itinerary", h.GenerateItinerary)
		user.POST("/generate-packing-list", h.GeneratePackingList)
		user.POST("/plan/pdf", h.DownloadPlanPDF)
		user.GET("/trips", h.ListTrips)
		user.POST("/trips", h.CreateTrip)
		user.DELETE("/trips/:id", h.DeleteTrip)
	}

	return r
}
