package routes

import (
	"spsc-coopfund/internal/adapters/http/handlers"
	"spsc-coopfund/internal/adapters/http/middleware"
	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/config"
	"spsc-coopfund/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, notifier *services.NotificationService, logger *zap.Logger) {
	// Initialize repositories
	repos := repositories.NewRepos(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize services
	requestService := services.NewRequestService(repos, logger)
	settlementService := services.NewSettlementService(uow, notifier, logger)
	ledgerService := services.NewLedgerService(repos)
	memberService := services.NewMemberService(repos)
	dashboardService := services.NewDashboardService(repos)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg.AppMode)
	requestHandler := handlers.NewRequestHandler(requestService)
	settlementHandler := handlers.NewSettlementHandler(requestService, settlementService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	memberHandler := handlers.NewMemberHandler(memberService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	masterHandler := handlers.NewMasterHandler(repos.LoanTypes)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Member submissions (Authenticated)
	requestRoutes := apiV1.Group("/requests")
	requestRoutes.Use(middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupRequestRoutes(requestRoutes, requestHandler)

	// Member accounts (own account, or Officer/Admin)
	memberRoutes := apiV1.Group("/members")
	memberRoutes.Use(middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupMemberRoutes(memberRoutes, memberHandler, requestHandler)

	// Admin console (Officer/Admin only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg), middleware.OfficerOrAdmin(), middleware.NoCacheHeaders())
	setupAdminRoutes(adminRoutes, settlementHandler, ledgerHandler, memberHandler, dashboardHandler)

	// Master data
	masterRoutes := apiV1.Group("/master")
	masterRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMasterRoutes(masterRoutes, masterHandler)
}

// setupRequestRoutes configures member request submission routes
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler) {
	submit := middleware.SubmitRateLimiter()

	router.Post("/deposits", submit, handler.SubmitDeposit)
	router.Post("/withdrawals", submit, handler.SubmitWithdrawal)
	router.Post("/loans", submit, handler.SubmitLoanApplication)
	router.Post("/loan-payments", submit, handler.SubmitLoanPayment)
	router.Post("/membership-withdrawals", submit, handler.SubmitMembershipWithdrawal)
}

// setupMemberRoutes configures member account routes
func setupMemberRoutes(router fiber.Router, memberHandler *handlers.MemberHandler, requestHandler *handlers.RequestHandler) {
	self := middleware.SelfOrStaff("member_id")

	router.Get("/:member_id", self, memberHandler.Get)
	router.Get("/:member_id/requests", self, requestHandler.ListMemberRequests)
}

// setupAdminRoutes configures the review queue, ledger and dashboard
func setupAdminRoutes(
	router fiber.Router,
	settlementHandler *handlers.SettlementHandler,
	ledgerHandler *handlers.LedgerHandler,
	memberHandler *handlers.MemberHandler,
	dashboardHandler *handlers.DashboardHandler,
) {
	// Review queue
	router.Get("/requests", settlementHandler.ListPending)
	router.Post("/requests/:member_id/:transaction_id/approve", settlementHandler.Approve)
	router.Post("/requests/:member_id/:transaction_id/reject", settlementHandler.Reject)

	// Ledger
	router.Get("/ledger/:member_id", ledgerHandler.History)
	router.Get("/ledger/:member_id/:kind/:transaction_id", ledgerHandler.Get)

	// Members & Dashboard
	router.Get("/members", memberHandler.List)
	router.Get("/dashboard", dashboardHandler.GetAdminDashboard)
}

// setupMasterRoutes configures master data routes
func setupMasterRoutes(router fiber.Router, handler *handlers.MasterHandler) {
	router.Get("/loan-types", middleware.MasterDataCache(), handler.ListLoanTypes)
	router.Get("/loan-types/:id", middleware.MasterDataCache(), handler.GetLoanType)

	// Admin only
	router.Post("/loan-types", middleware.AdminOnly(), handler.CreateLoanType)
	router.Put("/loan-types/:id", middleware.AdminOnly(), handler.UpdateLoanType)
}
