// Package router assembles the HTTP API from the services.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"

	_ "fintrack/internal/docs" // Import swagger docs
)

// Options controls the optional parts of the router.
type Options struct {
	CORSAllowedOrigins []string
	// Swagger mounts the API documentation under /swagger.
	Swagger bool
}

// New wires services and handlers over db and registers every route.
func New(db *gorm.DB, opts Options) *gin.Engine {
	// Initialize services
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.CORS(opts.CORSAllowedOrigins))
	router.Use(middleware.ErrorHandler())

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public auth routes
	auth := api.Group("/auth")
	auth.POST("/register/", authHandler.Register)
	auth.POST("/login/", authHandler.Login)
	auth.POST("/refresh/", authHandler.Refresh)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/auth/profile/", authHandler.GetProfile)
	protected.PATCH("/auth/profile/", authHandler.UpdateProfile)
	protected.DELETE("/auth/profile/", authHandler.DeleteProfile)

	categories := protected.Group("/categories")
	categories.POST("/", categoryHandler.CreateCategory)
	categories.GET("/", categoryHandler.GetCategories)
	categories.GET("/:id/", categoryHandler.GetCategory)
	categories.PUT("/:id/", categoryHandler.UpdateCategory)
	categories.PATCH("/:id/", categoryHandler.PatchCategory)
	categories.DELETE("/:id/", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("/", transactionHandler.CreateTransaction)
	transactions.GET("/", transactionHandler.GetTransactions)
	transactions.GET("/summary/", transactionHandler.GetSummary)
	transactions.GET("/export/", transactionHandler.ExportTransactions)
	transactions.GET("/:id/", transactionHandler.GetTransaction)
	transactions.PUT("/:id/", transactionHandler.UpdateTransaction)
	transactions.PATCH("/:id/", transactionHandler.PatchTransaction)
	transactions.DELETE("/:id/", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("/", budgetHandler.CreateBudget)
	budgets.GET("/", budgetHandler.GetBudgets)
	budgets.GET("/:id/", budgetHandler.GetBudget)
	budgets.PUT("/:id/", budgetHandler.UpdateBudget)
	budgets.PATCH("/:id/", budgetHandler.PatchBudget)
	budgets.DELETE("/:id/", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress/", budgetHandler.GetBudgetProgress)

	return router
}
