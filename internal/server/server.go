package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/auth"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/config"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/coupon"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/gateway"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/notify"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/payment"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/settlement"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/tournament"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/user"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/wallet"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	notify *notify.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, notifyService *notify.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	gw := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	userRepo := user.NewRepository(db)
	couponRepo := coupon.NewRepository(db)
	walletRepo := wallet.NewRepository(db, cfg.MinWithdrawalAmount)
	paymentRepo := payment.NewRepository(db)
	tournamentRepo := tournament.NewRepository(db)
	settlementRepo := settlement.NewRepository(db)

	couponEngine := coupon.NewEngine(couponRepo)

	userService := user.NewService(userRepo, cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	paymentService := payment.NewService(paymentRepo, tournamentRepo, couponRepo, walletRepo, gw, cfg.RazorpayKeySecret)
	tournamentService := tournament.NewService(tournamentRepo, userRepo, couponEngine, couponRepo, paymentRepo)
	settlementService := settlement.NewService(settlementRepo, tournamentRepo, paymentRepo, walletRepo, userRepo)

	userHandler := user.NewHandler(userService)
	couponHandler := coupon.NewHandler(couponRepo)
	tournamentHandler := tournament.NewHandler(tournamentService)
	paymentHandler := payment.NewHandler(paymentService)
	walletHandler := wallet.NewHandler(walletRepo, gw, cfg.RazorpayKeySecret, cfg.MinTopUpAmount, cfg.MaxTopUpAmount)
	settlementHandler := settlement.NewHandler(settlementService)

	authLimiter := RateLimitMiddleware(5, 10)
	public := router.Group("/auth")
	public.Use(authLimiter)
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	router.GET("/tournaments", tournamentHandler.List)
	router.GET("/tournaments/:id", tournamentHandler.Get)
	router.GET("/tournaments/:id/winners", settlementHandler.Winners)
	router.GET("/winners/recent", settlementHandler.Recent)

	authMiddleware := auth.AuthMiddleware(cfg.AccessTokenSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me", userHandler.UpdateMe)

		protected.GET("/tournaments/mine", tournamentHandler.ListMine)
		protected.POST("/tournaments/:id/register", tournamentHandler.Register)
		protected.POST("/tournaments/:id/coupon/preview", tournamentHandler.PreviewCoupon)
		protected.GET("/tournaments/:id/my-registration", tournamentHandler.MyRegistration)

		protected.GET("/payments", paymentHandler.ListMine)
		protected.GET("/payments/:id", paymentHandler.Get)
		protected.POST("/payments/:id/order", paymentHandler.CreateOrder)
		protected.POST("/payments/:id/verify", paymentHandler.Verify)
		protected.POST("/payments/:id/pay-wallet", paymentHandler.PayWithWallet)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
		protected.POST("/wallet/topup/order", walletHandler.CreateTopUpOrder)
		protected.POST("/wallet/topup/verify", walletHandler.VerifyTopUp)
		protected.POST("/wallet/withdraw", walletHandler.RequestWithdrawal)
		protected.GET("/wallet/withdrawals", walletHandler.GetWithdrawals)
		protected.PUT("/wallet/withdrawal-info", walletHandler.UpdateWithdrawalInfo)

		protected.GET("/notifications", notificationsHandler(notifyService))
		protected.PUT("/notifications/:id/read", markNotificationHandler(notifyService))
	}

	adminMiddleware := auth.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/tournaments", tournamentHandler.Create)
		admin.PUT("/tournaments/:id", tournamentHandler.Update)
		admin.DELETE("/tournaments/:id", tournamentHandler.Cancel)
		admin.PUT("/tournaments/:id/room", tournamentHandler.SetRoom)
		admin.GET("/tournaments/:id/participants", tournamentHandler.Participants)
		admin.POST("/tournaments/:id/winners", settlementHandler.DeclareWinners)

		admin.POST("/coupons", couponHandler.Create)
		admin.GET("/coupons", couponHandler.List)
		admin.DELETE("/coupons/:id", couponHandler.Deactivate)

		admin.GET("/payments/manual", paymentHandler.ListManualReview)
		admin.POST("/payments/:id/decision", paymentHandler.Decide)
		admin.POST("/payments/:id/refund", paymentHandler.Refund)
		admin.GET("/payments/:id/refunds", paymentHandler.ListRefunds)

		admin.GET("/withdrawals", walletHandler.ListWithdrawals)
		admin.POST("/withdrawals/:id/resolve", walletHandler.ResolveWithdrawal)
		admin.GET("/wallet/stats", walletHandler.GetStats)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		notify: notifyService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to finish, up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
