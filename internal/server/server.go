// Package server wires the thin HTTP layer: routing, auth middleware and
// request handlers that fetch trades and delegate to the analytics and ocr
// packages.
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/market"
	"trade-journal-go/internal/ocr"
)

// Handler holds dependencies for the API endpoints.
type Handler struct {
	db        *gorm.DB
	logger    *zap.Logger
	tokens    *auth.Manager
	pipeline  *ocr.Pipeline
	ocrHealth func() error
	news      *market.NewsClient
	symbols   *market.SymbolClient
	maxUpload int64
	uploadDir string
}

// NewHandler creates a Handler with all its collaborators. Uploaded files
// (avatars) land under uploadDir, served back at /uploads.
func NewHandler(db *gorm.DB, logger *zap.Logger, tokens *auth.Manager, pipeline *ocr.Pipeline,
	ocrHealth func() error, news *market.NewsClient, symbols *market.SymbolClient,
	maxUpload int64, uploadDir string) *Handler {
	return &Handler{
		db:        db,
		logger:    logger,
		tokens:    tokens,
		pipeline:  pipeline,
		ocrHealth: ocrHealth,
		news:      news,
		symbols:   symbols,
		maxUpload: maxUpload,
		uploadDir: uploadDir,
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Static("/uploads", h.uploadDir)

	api := router.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/ocr/health", h.OCRHealth)

	protected := api.Group("", h.RequireAuth())
	{
		protected.POST("/trades", h.CreateTrade)
		protected.GET("/trades", h.ListTrades)
		protected.GET("/trades/:id", h.GetTrade)
		protected.PUT("/trades/:id", h.UpdateTrade)
		protected.DELETE("/trades/:id", h.DeleteTrade)

		protected.GET("/analytics/summary", h.Summary)
		protected.GET("/analytics/equity-curve", h.EquityCurve)
		protected.GET("/analytics/volume", h.TradingVolume)
		protected.GET("/analytics/behavior", h.BehaviorAnalysis)

		protected.POST("/ocr/scan", h.ScanTrade)

		protected.GET("/market-news", h.MarketNews)
		protected.POST("/market-news/refresh", h.RefreshMarketNews)
		protected.GET("/symbol-search", h.SymbolSearch)

		protected.GET("/account", h.GetAccount)
		protected.PUT("/account", h.UpdateAccount)
		protected.PUT("/account/preferences", h.UpdatePreferences)
		protected.POST("/account/avatar", h.UploadAvatar)
		protected.POST("/account/2fa", h.Toggle2FA)
	}

	return router
}

// ok writes the standard success envelope.
func ok(c *gin.Context, status int, data gin.H) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail writes the standard error envelope.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}
