package router

import (
	"github.com/keerthana777z/health-risk-demo/internal/config"
	"github.com/keerthana777z/health-risk-demo/internal/handler"
	"github.com/keerthana777z/health-risk-demo/internal/history"
	"github.com/keerthana777z/health-risk-demo/internal/importer"
	"github.com/keerthana777z/health-risk-demo/internal/middleware"
	"github.com/keerthana777z/health-risk-demo/internal/predictor"
	"github.com/keerthana777z/health-risk-demo/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouter wires the gin engine: middleware, handlers and the
// session broadcast plumbing.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *logrus.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	jwtSecret := cfg.JWT.Secret
	encryptKey := cfg.Security.EncryptionKey

	// session change fan-out; the audit recorder is its standing consumer
	bus := session.NewBroadcaster()
	session.NewRecorder(db, encryptKey, log).Run(bus)

	client := predictor.New(cfg.Predictor.BaseURL, log)
	store := history.NewStore(db)
	bulk := importer.New(db)

	api := r.Group("/api")

	// sign up / sign in need no token
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.Issuer,
		cfg.JWT.ExpireHours, cfg.Security.BcryptCost, bus)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// predictions work anonymously; results are only recorded with a session
	predictHandler := handler.NewPredictHandler(client, store, log)
	api.POST("/predictions/:kind",
		middleware.OptionalAuth(jwtSecret, db),
		middleware.AuditMiddleware(db, encryptKey),
		predictHandler.Submit)

	// platform analytics is public, same shape the remote model service exposes
	analyticsHandler := handler.NewAnalyticsHandler(store, log)
	r.GET("/analytics/average_probability", analyticsHandler.AverageProbability)

	// everything below requires a live session
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db, encryptKey),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/auth/logout", authHandler.Logout)

	historyHandler := handler.NewHistoryHandler(db, store, client, log)
	protected.GET("/predictions", historyHandler.ListPredictions)
	protected.GET("/dashboard", historyHandler.Dashboard)

	importExportHandler := handler.NewImportExportHandler(db, bulk)
	protected.POST("/health-data/import", importExportHandler.ImportCSV)
	protected.GET("/health-data", importExportHandler.ListHealthData)
	protected.GET("/export/csv", importExportHandler.ExportCSV)
	protected.GET("/export/xlsx", importExportHandler.ExportXLSX)

	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db, cfg.Security.BcryptCost))
	protected.POST("/profile/delete", handler.DeleteAccount(db))

	logHandler := handler.NewLogHandler(db, encryptKey, cfg.App.PageSize)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
