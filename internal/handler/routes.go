package handler

import (
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, categoryHandler *CategoryHandler, incomeHandler *IncomeHandler, expenseHandler *ExpenseHandler, summaryHandler *SummaryHandler, receiptHandler *ReceiptHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Everything below requires a bearer token; rate limiting is keyed
	// on the token so it applies after authentication
	protected := api.Group("")
	protected.Use(authMiddleware.Authenticate())
	protected.Use(middleware.RateLimitMiddleware(rateLimiter))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/password", authHandler.UpdatePassword)

	// Category routes
	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.GET("/categories", categoryHandler.GetCategories)
	protected.PUT("/categories/:id", categoryHandler.UpdateCategory)
	protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	// Income routes
	protected.POST("/incomes", incomeHandler.CreateIncome)
	protected.GET("/incomes", incomeHandler.GetIncomes)
	protected.GET("/incomes/:id", incomeHandler.GetIncome)
	protected.PUT("/incomes/:id", incomeHandler.UpdateIncome)
	protected.DELETE("/incomes/:id", incomeHandler.DeleteIncome)

	// Expense routes
	protected.POST("/expenses", expenseHandler.CreateExpense)
	protected.GET("/expenses", expenseHandler.GetExpenses)
	protected.GET("/expenses/:id", expenseHandler.GetExpense)
	protected.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	protected.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	// Receipt routes
	protected.POST("/expenses/:id/receipt", receiptHandler.UploadReceipt)
	protected.GET("/expenses/:id/receipt", receiptHandler.GetReceipt)
	protected.DELETE("/expenses/:id/receipt", receiptHandler.DeleteReceipt)

	// Summary route
	protected.GET("/summary", summaryHandler.GetSummary)

	// WebSocket endpoint (token via query parameter, validated in the handler)
	e.GET("/ws", wsHandler.HandleWS)

	// API documentation
	e.GET("/openapi.json", ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
