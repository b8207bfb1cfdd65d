package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/cache"
	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/handlers"
	"dental-clinic-server/internal/middleware"
	"dental-clinic-server/internal/repository"
	"dental-clinic-server/internal/services"
)

// SetupRoutes configures the application routes. provider backs the
// feedback rate limiter and dedupe; pass cache.NewMemory() without Redis.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, provider cache.Provider) {
	store := repository.NewGormStore(db)

	appointmentService := services.NewAppointmentService(store)
	queryService := services.NewQueryService(store)
	catalogService := services.NewCatalogService(store)
	feedbackService := services.NewFeedbackService(store)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(store, cfg)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, queryService)
	historyHandler := handlers.NewHistoryHandler(queryService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, provider)

	authRequired := middleware.AuthMiddleware(cfg)
	superuserOnly := middleware.SuperuserMiddleware()
	staff := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{authRequired, superuserOnly, h}
	}

	api := router.Group("/api")
	{
		adminRoutes := api.Group("/admin")
		{
			adminRoutes.POST("/login", authHandler.Login)
			adminRoutes.POST("/refresh", authHandler.RefreshToken)
			adminRoutes.GET("/verify", staff(authHandler.Verify)...)
			adminRoutes.POST("/logout", staff(authHandler.Logout)...)
		}

		appointmentRoutes := api.Group("/appointments")
		{
			// Public booking and self-service lookup
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("/by_phone", appointmentHandler.LookupByPhone)

			// Status changes are public; a staff token only decides changed_by
			optionalAuth := middleware.OptionalAuthMiddleware(cfg)
			appointmentRoutes.PATCH("/:id", optionalAuth, appointmentHandler.UpdateAppointment)
			appointmentRoutes.PUT("/:id", optionalAuth, appointmentHandler.UpdateAppointment)

			appointmentRoutes.GET("", staff(appointmentHandler.ListAppointments)...)
			appointmentRoutes.GET("/:id", staff(appointmentHandler.GetAppointmentByID)...)
			appointmentRoutes.DELETE("/:id", staff(appointmentHandler.DeleteAppointment)...)
		}

		historyRoutes := api.Group("/history")
		historyRoutes.Use(authRequired, superuserOnly)
		{
			historyRoutes.GET("", historyHandler.ListHistory)
			historyRoutes.GET("/:id", historyHandler.GetHistoryByID)
			historyRoutes.POST("/:id/mark_visited", historyHandler.MarkVisited)
		}

		api.GET("/calendar", staff(historyHandler.Calendar)...)

		doctorRoutes := api.Group("/doctors")
		{
			doctorRoutes.GET("", catalogHandler.ListDoctors)
			doctorRoutes.GET("/:id", catalogHandler.GetDoctor)
			doctorRoutes.POST("", staff(catalogHandler.CreateDoctor)...)
			doctorRoutes.PUT("/:id", staff(catalogHandler.UpdateDoctor)...)
			doctorRoutes.DELETE("/:id", staff(catalogHandler.DeleteDoctor)...)
		}

		serviceRoutes := api.Group("/services")
		{
			serviceRoutes.GET("", catalogHandler.ListServices)
			serviceRoutes.GET("/:id", catalogHandler.GetService)
			serviceRoutes.POST("", staff(catalogHandler.CreateService)...)
			serviceRoutes.PUT("/:id", staff(catalogHandler.UpdateService)...)
			serviceRoutes.DELETE("/:id", staff(catalogHandler.DeleteService)...)
		}

		feedbackRoutes := api.Group("/feedback")
		{
			feedbackRoutes.POST("",
				middleware.RateLimit(provider, "feedback", handlers.FeedbackRateLimit, handlers.FeedbackRateWindow),
				feedbackHandler.SubmitFeedback)
			feedbackRoutes.GET("", feedbackHandler.ListFeedback)
			feedbackRoutes.GET("/:id", feedbackHandler.GetFeedback)
		}
	}

	// Simple health check endpoint
	router.GET("/health", handlers.Health(db))
}
