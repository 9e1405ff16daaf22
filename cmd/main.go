package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"reno-market/internal/auth"
	"reno-market/internal/config"
	"reno-market/internal/database"
	"reno-market/internal/handlers"
	"reno-market/internal/jobs"
	"reno-market/internal/models"
	"reno-market/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret, cfg.App.AccessTokenTTL)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	auditService := services.NewAuditService(database.GetDB())
	notificationService := services.NewNotificationService(database.GetDB())
	authService := services.NewAuthService(database.GetDB(), cfg.App.RefreshTokenTTL, auditService)
	userService := services.NewUserService(database.GetDB(), auditService)
	proService := services.NewProService(database.GetDB(), auditService)
	catalogService := services.NewCatalogService(database.GetDB())
	jobService := services.NewJobService(database.GetDB(), auditService)
	proposalService := services.NewProposalService(database.GetDB(), proService, auditService, notificationService)
	contractService := services.NewContractService(database.GetDB())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, notificationService)
	proHandler := handlers.NewProHandler(proService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	jobHandler := handlers.NewJobHandler(jobService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	contractHandler := handlers.NewContractHandler(contractService)

	// Start proposal expiry sweep
	expirer := jobs.NewProposalExpirer(proposalService)
	expirer.Start(cfg.App.ProposalSweepEvery)
	log.Println("Proposal expirer started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	// Add additional frontend URL from environment if provided
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
	}

	// Authenticated auth routes
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.POST("/logout", authHandler.Logout)
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public catalog and listing routes
	router.GET("/api/catalog/categories", catalogHandler.ListCategories)
	router.GET("/api/catalog/categories/:id", catalogHandler.GetCategory)
	router.GET("/api/catalog/cities", catalogHandler.ListCities)
	router.GET("/api/jobs", jobHandler.Search)
	router.GET("/api/pros/:id", proHandler.GetPro)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// User endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.PUT("/profile", userHandler.UpdateProfile)
			userRoutes.POST("/password", userHandler.ChangePassword)
			userRoutes.DELETE("/account", userHandler.Deactivate)
			userRoutes.GET("/notifications", userHandler.GetNotifications)
			userRoutes.POST("/notifications/:id/read", userHandler.MarkNotificationRead)
		}

		// Pro profile endpoints (pro role only)
		proRoutes := api.Group("/pros/me")
		proRoutes.Use(auth.RequireRole(string(models.RolePro)))
		{
			proRoutes.GET("", proHandler.GetMyProfile)
			proRoutes.PUT("", proHandler.UpdateProfile)
			proRoutes.POST("/availability", proHandler.ToggleAvailability)
			proRoutes.POST("/skills", proHandler.AddSkill)
			proRoutes.DELETE("/skills/:skillId", proHandler.RemoveSkill)
			proRoutes.POST("/service-areas", proHandler.AddServiceArea)
			proRoutes.DELETE("/service-areas/:cityId", proHandler.RemoveServiceArea)
			proRoutes.POST("/portfolio", proHandler.CreatePortfolioItem)
			proRoutes.PUT("/portfolio/:id", proHandler.UpdatePortfolioItem)
			proRoutes.DELETE("/portfolio/:id", proHandler.DeletePortfolioItem)
			proRoutes.GET("/stats", proHandler.GetStatistics)
		}

		// Job endpoints
		api.POST("/jobs", jobHandler.Create)
		api.GET("/jobs/mine", jobHandler.ListMine)
		api.GET("/jobs/:id", jobHandler.Get)
		api.PUT("/jobs/:id", jobHandler.Update)
		api.POST("/jobs/:id/publish", jobHandler.Publish)
		api.POST("/jobs/:id/complete", jobHandler.Complete)
		api.DELETE("/jobs/:id", jobHandler.Delete)
		api.GET("/jobs/:id/proposals", proposalHandler.ListByJob)

		// Proposal endpoints
		api.POST("/proposals", proposalHandler.Submit)
		api.GET("/proposals/mine", proposalHandler.ListMine)
		api.GET("/proposals/:id", proposalHandler.Get)
		api.PUT("/proposals/:id", proposalHandler.Update)
		api.POST("/proposals/:id/accept", proposalHandler.Accept)
		api.POST("/proposals/:id/withdraw", proposalHandler.Withdraw)
		api.DELETE("/proposals/:id", proposalHandler.Remove)

		// Contract endpoints
		api.GET("/contracts", contractHandler.ListMine)
		api.GET("/contracts/:id", contractHandler.Get)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.RequireRole(string(models.RoleAdmin)))
	{
		admin.POST("/catalog/categories", catalogHandler.CreateCategory)
		admin.PUT("/catalog/categories/:id", catalogHandler.UpdateCategory)
		admin.POST("/catalog/categories/:id/skills", catalogHandler.AddSkill)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
