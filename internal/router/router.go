package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"shieldpool/internal/app"
	"shieldpool/internal/handlers"
	"shieldpool/internal/middleware"
)

// Setup wires all routes over the service container.
func Setup(container *app.Container, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	healthHandler := handlers.NewHealthHandler(container.DB)
	poolHandler := handlers.NewPoolHandler(container.PoolService, logger)
	authHandler := handlers.NewAdminAuthHandler(logger)
	adminAuth := middleware.NewAdminAuthMiddleware(logger)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/admin/login", authHandler.Login)

		api.GET("/pools", poolHandler.ListPools)
		api.GET("/pools/:pool_id", poolHandler.GetPool)
		api.GET("/pools/:pool_id/root", poolHandler.GetRoot)
		api.GET("/pools/:pool_id/commitments", poolHandler.ListCommitments)
		api.GET("/pools/:pool_id/withdrawals", poolHandler.ListWithdrawals)

		api.POST("/pools/:pool_id/deposit", poolHandler.Deposit)
		api.POST("/pools/:pool_id/withdraw", poolHandler.Withdraw)
		api.POST("/pools/:pool_id/transfer", poolHandler.PrivateTransfer)

		admin := api.Group("/admin", adminAuth.RequireAdminAuth())
		{
			admin.POST("/pools", poolHandler.CreatePool)
			admin.POST("/pools/:pool_id/verification-key", poolHandler.SetVerificationKey)
			admin.POST("/pools/:pool_id/verification-key/lock", poolHandler.LockVerificationKey)
			admin.POST("/pools/:pool_id/pause", poolHandler.Pause)
			admin.POST("/pools/:pool_id/unpause", poolHandler.Unpause)
		}
	}

	return r
}
