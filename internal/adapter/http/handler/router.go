package handler

import (
	"settlement-ledger/internal/adapter/http/middleware"
	redisStore "settlement-ledger/internal/adapter/storage/redis"
	"settlement-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	PayoutSvc      ports.PayoutService
	Custodian      ports.CapitalCustodian
	OperatorRepo   ports.OperatorRepository
	EncSvc         ports.EncryptionService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(4 << 20)) // 4 MB: payout requests carry trade lists and proofs

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	batchHandler := NewBatchHandler(deps.LedgerSvc)
	v1.POST("/verify", rl("verify"), batchHandler.VerifyTrade)
	v1.GET("/batches/:id", rl("verify"), batchHandler.GetBatch)

	// --- HMAC-authenticated routes (operator API) ---
	hmacAuth := middleware.HMACAuth(deps.OperatorRepo, deps.EncSvc, deps.SigSvc, deps.NonceStore, deps.Logger)
	payoutHandler := NewPayoutHandler(deps.PayoutSvc)

	v1.POST("/batches", hmacAuth, rl("batches"), batchHandler.SubmitBatch)
	v1.POST("/payouts", hmacAuth, rl("payouts"), payoutHandler.RequestPayout)
	v1.POST("/scaling", hmacAuth, rl("scaling"), payoutHandler.AuthorizeScaling)
	v1.GET("/traders/:trader_id/nonce", hmacAuth, rl("payouts"), payoutHandler.GetNonce)

	// --- JWT-authenticated routes (auditor dashboard) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.LedgerSvc, deps.Custodian)

	v1.GET("/batches", jwtAuth, rl("dashboard"), batchHandler.ListBatches)
	v1.GET("/batches/:id/pnl/:trader_id", jwtAuth, rl("dashboard"), batchHandler.GetTraderPnL)
	v1.GET("/payouts/:id", jwtAuth, rl("dashboard"), payoutHandler.GetPayout)
	v1.GET("/payouts", jwtAuth, rl("dashboard"), payoutHandler.ListPayouts)
	v1.GET("/dashboard/stats", jwtAuth, rl("dashboard"), dashboardHandler.GetStats)

	return r
}
