package router

import (
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"loteamento/config"
	"loteamento/internal/cache"
	"loteamento/internal/handler"
	"loteamento/internal/metrics"
	"loteamento/internal/middleware"
	"loteamento/internal/repository"
	"loteamento/internal/service"
	"loteamento/internal/storage"
	"loteamento/internal/ws"
	"loteamento/pkg/cloudinary"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services are the process-scoped business objects shared by the HTTP
// layer and background jobs.
type Services struct {
	Recorder *service.ActivityRecorder
	Auth     *service.AuthService
	Lots     *service.LotService
	Slides   *service.CarouselService
	Configs  *service.ConfigService
	Site     *service.SiteService
	Backups  *service.BackupService
	Feed     *ws.ActivityHub
}

// NewServices wires the services and the listeners on recorded activity:
// the admin feed and public cache invalidation.
func NewServices(cfg *config.Config, db *gorm.DB, store storage.Storage, siteCache cache.Cache, log *zap.Logger) *Services {
	rec := service.NewActivityRecorder(repository.NewActivityRepository(db), log.Named("activity"))
	s := &Services{
		Recorder: rec,
		Auth:     service.NewAuthService(cfg, db, rec),
		Lots:     service.NewLotService(repository.NewLotRepository(db), rec),
		Slides:   service.NewCarouselService(db, rec),
		Configs:  service.NewConfigService(db, rec),
		Backups:  service.NewBackupService(db, store, rec, cfg.Backup.MaxActivities, log.Named("backup")),
		Feed:     ws.NewActivityHub(),
	}
	s.Site = service.NewSiteService(s.Lots, s.Slides, s.Configs, siteCache, cfg.Redis.SiteTTL, log.Named("site"))
	s.Site.InvalidateOn(rec)
	rec.OnRecord(s.Feed.Publish)
	return s
}

func Setup(cfg *config.Config, db *gorm.DB, svcs *Services, cloud cloudinary.Client, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log.Named("http")))
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(cfg)))

	apiLimiter := middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	loginLimiter := middleware.NewInMemoryRateLimiter(10, 15*time.Minute)

	authHandler := handler.NewAuthHandler(svcs.Auth, log)
	lotHandler := handler.NewLotHandler(svcs.Lots, log)
	carouselHandler := handler.NewCarouselHandler(svcs.Slides, log)
	configHandler := handler.NewConfigHandler(svcs.Configs, log)
	siteHandler := handler.NewSiteHandler(svcs.Site, log)
	backupHandler := handler.NewBackupHandler(svcs.Backups, log)
	activityHandler := handler.NewActivityHandler(repository.NewActivityRepository(db), log)
	uploadHandler := handler.NewUploadHandler(cloud, cfg.Cloudinary.Folder, log)
	systemHandler := handler.NewSystemHandler(db, cfg.Server.Env, svcs.Feed.ClientCount)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	r.GET("/health", systemHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws/atividades", ws.UpgradeActivityWS(&cfg.JWT, svcs.Feed))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(apiLimiter))
	{
		api.GET("/status", systemHandler.Status)
		api.GET("/site-data", siteHandler.Data)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", middleware.RateLimit(loginLimiter), authHandler.Login)
			authGroup.POST("/register", middleware.RateLimit(loginLimiter), authHandler.Register)
			authGroup.POST("/init", middleware.RateLimit(loginLimiter), authHandler.Init)
			authGroup.GET("/status", authHandler.Status)
			authGroup.GET("/check", middleware.OptionalAuth(&cfg.JWT), authHandler.Check)
			authGroup.GET("/me", authMw, authHandler.Me)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.POST("/change-password", authMw, authHandler.ChangePassword)
		}

		api.GET("/lotes/public", lotHandler.Public)
		api.GET("/carrossel/public", carouselHandler.Public)
		api.GET("/configuracoes/public", configHandler.Public)

		lotes := api.Group("/lotes", authMw, adminMw)
		{
			lotes.GET("", lotHandler.List)
			lotes.GET("/stats/summary", lotHandler.Stats)
			lotes.GET("/:id", lotHandler.Get)
			lotes.POST("", lotHandler.Create)
			lotes.PUT("/:id", lotHandler.Update)
			lotes.DELETE("/:id", lotHandler.Delete)
			lotes.POST("/:id/status", lotHandler.SetStatus)
		}

		carrossel := api.Group("/carrossel", authMw, adminMw)
		{
			carrossel.GET("", carouselHandler.List)
			carrossel.POST("/reorder", carouselHandler.Reorder)
			carrossel.GET("/:id", carouselHandler.Get)
			carrossel.POST("", carouselHandler.Create)
			carrossel.PUT("/:id", carouselHandler.Update)
			carrossel.DELETE("/:id", carouselHandler.Delete)
			carrossel.POST("/:id/toggle", carouselHandler.Toggle)
		}

		configuracoes := api.Group("/configuracoes", authMw, adminMw)
		{
			configuracoes.GET("", configHandler.List)
			configuracoes.POST("/bulk", configHandler.Bulk)
			configuracoes.GET("/:chave", configHandler.Get)
			configuracoes.POST("", configHandler.Create)
			configuracoes.PUT("/:chave", configHandler.Update)
			configuracoes.DELETE("/:chave", configHandler.Delete)
		}

		backup := api.Group("/backup", authMw, adminMw)
		{
			backup.GET("", backupHandler.List)
			backup.GET("/stats", backupHandler.Stats)
			backup.POST("/export", backupHandler.Export)
			backup.GET("/download/:id", backupHandler.Download)
			backup.POST("/import", backupHandler.Import)
			backup.POST("/reset", backupHandler.Reset)
			backup.DELETE("/:id", backupHandler.Delete)
		}

		api.GET("/atividades", authMw, adminMw, activityHandler.List)
		api.POST("/uploads/image", authMw, adminMw, uploadHandler.UploadImage)
	}

	if dir := cfg.Server.StaticDir; dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			r.NoRoute(staticFallback(dir))
		}
	}
	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.IsProduction() && len(cfg.Server.AllowedOrigins) > 0 && !slices.Contains(cfg.Server.AllowedOrigins, "*") {
		c.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}

// staticFallback serves the public site and dashboard files for paths
// outside the API.
func staticFallback(dir string) gin.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/ws/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
