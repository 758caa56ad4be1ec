package restapi

import (
	"net/http"
	"net/http/pprof"

	"wallet_engine/internal/infrastructure/configloader"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
func SetupRouter(h *Handler, cfg configloader.ServerConfig, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	router.Use(ZapLoggerMiddleware(zapLogger))
	router.Use(RecoveryMiddleware(zapLogger))

	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// Группа для API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolio", h.GetPortfolioHandler)
		v1.GET("/portfolio/:denomination", h.GetAssetHandler)
		v1.POST("/balances/refresh", h.RefreshBalancesHandler)
		v1.PUT("/assets/enabled", h.SetEnabledAssetsHandler)
		v1.GET("/fees", h.GetFeeHandler)
		v1.POST("/transfers/validate", h.ValidateTransferHandler)
		v1.POST("/transfers/max", h.MaxAmountHandler)
		v1.POST("/transfers", h.SubmitTransferHandler)

		sessions := v1.Group("/transfers/sessions")
		sessions.POST("", h.OpenTransferSessionHandler)
		sessions.GET("/:id", h.GetTransferSessionHandler)
		sessions.PATCH("/:id", h.EditTransferSessionHandler)
		sessions.DELETE("/:id", h.CloseTransferSessionHandler)
		sessions.POST("/:id/fee/retry", h.RetryFeeHandler)
		sessions.POST("/:id/submit", h.SubmitTransferSessionHandler)
		sessions.POST("/:id/resume", h.ResumeTransferSessionHandler)
		v1.GET("/transactions", h.ListTransactionsHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.EnablePprof {
		registerPprof(router)
		zapLogger.Info("Pprof endpoints enabled under /debug/pprof")
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// Make sure to protect these in a production environment
func registerPprof(router *gin.Engine) {
	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/block", gin.WrapH(pprof.Handler("block")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pprofRouter.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
		pprofRouter.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
	}
}
