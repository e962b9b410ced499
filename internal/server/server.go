// Package server builds saldo's HTTP router.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"saldo/internal/config"
	"saldo/internal/events"
	"saldo/internal/export"
	"saldo/internal/handlers"
	"saldo/internal/middleware"
	"saldo/internal/services"

	_ "saldo/internal/docs" // swagger docs
)

// Options configures the router and the services behind it.
type Options struct {
	JWTSecret   string
	JWTIssuer   string
	AdminAPIKey string

	SummaryCacheSize int
	SummaryCacheTTL  time.Duration

	// CategorySeeds are given to a user on first category access; nil uses
	// the builtin set.
	CategorySeeds []config.CategorySeed

	// Publisher receives transaction events in addition to the summary
	// cache. May be nil.
	Publisher events.Publisher

	// Uploader stores exported reports. Nil disables storage exports.
	Uploader export.Uploader
}

// OptionsFromConfig maps application configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		JWTSecret:        cfg.JWTSecret,
		JWTIssuer:        cfg.JWTIssuer,
		AdminAPIKey:      cfg.AdminAPIKey,
		SummaryCacheSize: cfg.SummaryCacheSize,
		SummaryCacheTTL:  cfg.SummaryCacheTTL,
	}
}

// New wires services and handlers over db and registers every route.
func New(db *gorm.DB, opts Options) *gin.Engine {
	if opts.SummaryCacheSize < 1 {
		opts.SummaryCacheSize = 1000
	}
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = 5 * time.Minute
	}

	// Services
	summaryService := services.NewSummaryService(db, opts.SummaryCacheSize, opts.SummaryCacheTTL)
	publisher := events.Fanout{summaryService, opts.Publisher}
	accountService := services.NewAccountService(db, summaryService)
	categoryService := services.NewCategoryService(db, opts.CategorySeeds)
	transactionService := services.NewTransactionService(db, accountService, publisher)
	installmentService := services.NewInstallmentService(transactionService)
	reportService := services.NewReportService(db)
	forecastService := services.NewForecastService(db)
	budgetService := services.NewBudgetService(db)
	auditService := services.NewAuditService(db)

	var exporter *export.Exporter
	if opts.Uploader != nil {
		exporter = export.NewExporter(opts.Uploader)
	}

	// Handlers
	accountHandler := handlers.NewAccountHandler(accountService, transactionService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, installmentService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	reportHandler := handlers.NewReportHandler(reportService, exporter, auditService)
	summaryHandler := handlers.NewSummaryHandler(summaryService, forecastService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(opts.JWTSecret, opts.JWTIssuer))

	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.POST("/reconcile", accountHandler.Reconcile)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/transactions", accountHandler.GetAccountTransactions)

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("/installments", transactionHandler.CreateInstallments)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	v1.GET("/summary", summaryHandler.GetSummary)
	v1.GET("/forecast", summaryHandler.GetForecast)

	reports := v1.Group("/reports")
	reports.GET("", reportHandler.GetReport)
	reports.GET("/export", reportHandler.ExportReport)

	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminAuthMiddleware(opts.AdminAPIKey))
	admin.POST("/reconcile", accountHandler.ReconcileAll)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
