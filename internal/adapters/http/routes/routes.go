package routes

import (
	"expense-insight/internal/adapters/http/handlers"
	"expense-insight/internal/adapters/http/middleware"
	"expense-insight/internal/adapters/persistence/repositories"
	"expense-insight/internal/config"
	"expense-insight/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Dependencies are the outbound collaborators built by the caller.
// Nil values degrade: a nil Classifier scores everything Normal, a nil
// Extractor fails every upload, a nil Mailer and Publisher drop output.
type Dependencies struct {
	Classifier services.AnomalyClassifier
	Extractor  services.ReceiptExtractor
	Mailer     services.Mailer
	Publisher  services.EventPublisher
}

// Services is what Setup wires, returned so the caller can schedule jobs
type Services struct {
	Auth          *services.AuthService
	User          *services.UserService
	Expense       *services.ExpenseService
	Analytics     *services.AnalyticsService
	Receipt       *services.ReceiptService
	PasswordReset *services.PasswordResetService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Dependencies) *Services {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)
	resetTokenRepo := repositories.NewPasswordResetTokenRepository(db)

	// Initialize services
	svc := &Services{
		Auth:          services.NewAuthService(userRepo, cfg.JWT),
		User:          services.NewUserService(userRepo),
		Expense:       services.NewExpenseService(expenseRepo, deps.Classifier, deps.Publisher),
		Analytics:     services.NewAnalyticsService(expenseRepo),
		PasswordReset: services.NewPasswordResetService(userRepo, resetTokenRepo, deps.Mailer, cfg.Mail.ResetURL),
	}
	svc.Receipt = services.NewReceiptService(deps.Extractor, svc.Expense)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(svc.Auth)
	userHandler := handlers.NewUserHandler(svc.User)
	expenseHandler := handlers.NewExpenseHandler(svc.Expense, svc.Analytics, svc.Receipt, cfg.OCR.MaxUploadMB)
	passwordHandler := handlers.NewPasswordHandler(svc.PasswordReset)

	requireAuth := middleware.AuthMiddleware(svc.Auth)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	setupUserRoutes(app.Group("/user"), authHandler, userHandler, requireAuth, cfg)

	expenseRoutes := app.Group("/expense")
	expenseRoutes.Use(requireAuth)
	setupExpenseRoutes(expenseRoutes, expenseHandler)

	setupPasswordRoutes(app.Group("/api"), passwordHandler, cfg)

	return svc
}

// setupUserRoutes configures registration, login and profile routes
func setupUserRoutes(
	router fiber.Router,
	handler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	requireAuth fiber.Handler,
	cfg *config.Config,
) {
	// Public routes
	authLimiter := middleware.AuthRateLimiter(cfg.RateLimit.Auth)
	router.Post("/register", authLimiter, middleware.NoCacheHeaders(), handler.Register)
	router.Post("/login", authLimiter, middleware.NoCacheHeaders(), handler.Login)

	// Protected routes
	router.Get("/me", requireAuth, middleware.NoCacheHeaders(), handler.Me)
	router.Put("/me", requireAuth, userHandler.UpdateProfile)
	router.Put("/password", requireAuth, userHandler.ChangePassword)
}

// setupExpenseRoutes configures expense routes. Every route is owner scoped.
func setupExpenseRoutes(router fiber.Router, handler *handlers.ExpenseHandler) {
	router.Post("/add", handler.Add)
	router.Put("/update/:id", handler.Update)
	router.Delete("/delete/:id", handler.Delete)
	router.Get("/list", middleware.NoCacheHeaders(), handler.List)
	router.Get("/analysis", middleware.NoCacheHeaders(), handler.Analysis)
	router.Post("/upload-bill", handler.UploadBill)

	// Must stay last so it does not shadow the static paths above
	router.Get("/:id", middleware.NoCacheHeaders(), handler.Get)
}

// setupPasswordRoutes configures password reset routes
func setupPasswordRoutes(router fiber.Router, handler *handlers.PasswordHandler, cfg *config.Config) {
	strict := middleware.StrictRateLimiter(cfg.RateLimit.Strict)
	router.Post("/send-reset-email", strict, handler.SendResetEmail)
	router.Post("/reset-password", strict, handler.ResetPassword)
	router.Post("/reset-password/confirm", strict, handler.ResetPassword)
}
