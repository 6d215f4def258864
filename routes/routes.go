package routes

import (
	"net/http"

	"github.com/hieuit01/BTL-CCNLTHD/config"
	"github.com/hieuit01/BTL-CCNLTHD/controllers"
	"github.com/hieuit01/BTL-CCNLTHD/middlewares"
	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators the router wires into services.
// Optional integrations are nil when not configured.
type Deps struct {
	Config   config.App
	DB       *gorm.DB
	Log      *logrus.Logger
	Hub      *services.RealtimeHub
	Push     *services.PushService
	Images   services.ImageStore
	Mailer   services.Mailer
	Events   services.EventPublisher
	Registry *prometheus.Registry
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
		d.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if d.Hub == nil {
		d.Hub = services.NewRealtimeHub()
	}

	access := services.NewAccess(d.DB)
	userSvc := services.NewUserService(d.DB, d.Images, d.Mailer, d.Events, d.Log)
	expertSvc := services.NewExpertService(d.DB, access)
	healthSvc := services.NewHealthService(d.DB, access)
	workoutSvc := services.NewWorkoutService(d.DB, access, d.Images, d.Events, d.Log)
	mealSvc := services.NewMealService(d.DB, access, d.Images)
	journalSvc := services.NewJournalService(d.DB, access)
	reminderSvc := services.NewReminderService(d.DB)
	reviewSvc := services.NewReviewService(d.DB, d.Events, d.Log)
	chatSvc := services.NewChatService(d.DB, d.Hub, d.Events, d.Log)
	reportSvc := services.NewReportService(d.DB, access)

	authCtl := controllers.NewAuthController(userSvc, d.Config.JWTSecret, d.Config.JWTTTL())
	userCtl := controllers.NewUserController(userSvc)
	expertCtl := controllers.NewExpertController(expertSvc)
	healthCtl := controllers.NewHealthController(healthSvc)
	workoutCtl := controllers.NewWorkoutController(workoutSvc)
	mealCtl := controllers.NewMealController(mealSvc)
	journalCtl := controllers.NewJournalController(journalSvc)
	reminderCtl := controllers.NewReminderController(reminderSvc)
	reviewCtl := controllers.NewReviewController(reviewSvc)
	chatCtl := controllers.NewChatController(chatSvc)
	reportCtl := controllers.NewReportController(reportSvc)
	rtCtl := controllers.NewRealtimeController(d.Hub)
	deviceCtl := controllers.NewDeviceController(d.Push, d.DB)
	uploadCtl := controllers.NewUploadController(d.Images)

	metrics := middlewares.NewMetrics(d.Registry)
	loginLimiter := middlewares.NewRateLimiter(d.Config.LoginRatePerMin)

	r := gin.New()
	r.MaxMultipartMemory = int64(d.Config.UploadMaxMemoryMB) << 20
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Log), metrics.Handler())

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	// Public routes
	r.POST("/auth/token", loginLimiter.Handler(), authCtl.Login)
	r.POST("/users/", authCtl.Register)

	auth := middlewares.AuthMiddleware(d.Config.JWTSecret, userSvc)
	api := r.Group("/", auth)

	users := api.Group("/users")
	{
		users.GET("/current-user", userCtl.GetCurrent)
		users.PATCH("/current-user", userCtl.UpdateCurrent)
		users.DELETE("/current-user", userCtl.DeleteCurrent)
	}

	experts := api.Group("/experts")
	{
		experts.GET("/", expertCtl.List)
		experts.GET("/trainers", expertCtl.Trainers)
		experts.GET("/nutritionists", expertCtl.Nutritionists)
		experts.GET("/current-expert", expertCtl.Current)
		experts.PATCH("/current-expert", expertCtl.UpdateCurrent)
		experts.GET("/connected-users", expertCtl.ConnectedUsers)
		experts.GET("/connected-user-count", expertCtl.ConnectedUserCount)
		experts.GET("/:id", expertCtl.Get)
		experts.GET("/:id/user-detail", expertCtl.UserDetail)
	}

	profiles := api.Group("/health-profiles")
	{
		profiles.GET("/", healthCtl.ListProfiles)
		profiles.POST("/", healthCtl.CreateProfile)
		profiles.GET("/current-profile", healthCtl.CurrentProfile)
		profiles.GET("/:id", healthCtl.GetProfile)
		profiles.PATCH("/:id", healthCtl.UpdateProfile)
		profiles.DELETE("/:id", healthCtl.DeleteProfile)
	}

	trackings := api.Group("/health-trackings")
	{
		trackings.GET("/", healthCtl.ListTrackings)
		trackings.POST("/", healthCtl.CreateTracking)
		trackings.GET("/current-tracking", healthCtl.CurrentTracking)
		trackings.GET("/:id", healthCtl.GetTracking)
		trackings.PATCH("/:id", healthCtl.UpdateTracking)
		trackings.DELETE("/:id", healthCtl.DeleteTracking)
	}

	workouts := api.Group("/workouts")
	{
		workouts.GET("/", workoutCtl.List)
		workouts.POST("/", workoutCtl.Create)
		workouts.GET("/own", workoutCtl.Own)
		workouts.GET("/suggested-by-expert", workoutCtl.SuggestedByExpert)
		workouts.GET("/:id", workoutCtl.Get)
		workouts.PATCH("/:id", workoutCtl.Update)
		workouts.DELETE("/:id", workoutCtl.Delete)
	}

	wplans := api.Group("/workout-plans")
	{
		wplans.GET("/", workoutCtl.ListPlans)
		wplans.POST("/", workoutCtl.CreatePlan)
		wplans.GET("/:id", workoutCtl.GetPlan)
		wplans.PATCH("/:id", workoutCtl.UpdatePlan)
		wplans.DELETE("/:id", workoutCtl.DeletePlan)
		wplans.POST("/:id/add-workout", workoutCtl.AddWorkout)
		wplans.POST("/:id/remove-workout", workoutCtl.RemoveWorkout)
		wplans.POST("/:id/mark-completed", workoutCtl.MarkPlanCompleted)
		wplans.POST("/:id/mark-pending", workoutCtl.MarkPlanPending)
		wplans.PATCH("/:id/sessions/:sessionId", workoutCtl.UpdateSession)
		wplans.POST("/:id/sessions/:sessionId/mark-complete", workoutCtl.MarkSessionComplete)
		wplans.POST("/:id/sessions/:sessionId/mark-pending", workoutCtl.MarkSessionPending)
	}

	meals := api.Group("/meals")
	{
		meals.GET("/", mealCtl.List)
		meals.POST("/", mealCtl.Create)
		meals.GET("/own", mealCtl.Own)
		meals.GET("/suggested-by-expert", mealCtl.SuggestedByExpert)
		meals.GET("/:id", mealCtl.Get)
		meals.PATCH("/:id", mealCtl.Update)
		meals.DELETE("/:id", mealCtl.Delete)
	}

	mplans := api.Group("/meal-plans")
	{
		mplans.GET("/", mealCtl.ListPlans)
		mplans.POST("/", mealCtl.CreatePlan)
		mplans.GET("/:id", mealCtl.GetPlan)
		mplans.PATCH("/:id", mealCtl.UpdatePlan)
		mplans.DELETE("/:id", mealCtl.DeletePlan)
		mplans.POST("/:id/add-meal", mealCtl.AddMeal)
		mplans.POST("/:id/remove-meal", mealCtl.RemoveMeal)
	}

	journals := api.Group("/health-journals")
	{
		journals.GET("/", journalCtl.List)
		journals.POST("/", journalCtl.Create)
		journals.GET("/:id", journalCtl.Get)
		journals.PATCH("/:id", journalCtl.Update)
		journals.DELETE("/:id", journalCtl.Delete)
	}

	reminders := api.Group("/reminders")
	{
		reminders.GET("/", reminderCtl.List)
		reminders.POST("/", reminderCtl.Create)
		reminders.GET("/:id", reminderCtl.Get)
		reminders.PATCH("/:id", reminderCtl.Update)
		reminders.DELETE("/:id", reminderCtl.Delete)
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("/", reviewCtl.List)
		reviews.POST("/", reviewCtl.Create)
		reviews.GET("/:id", reviewCtl.Get)
		reviews.GET("/:id/my-review", reviewCtl.MyReview)
		reviews.PATCH("/:id", reviewCtl.Update)
		reviews.DELETE("/:id", reviewCtl.Delete)
	}

	chats := api.Group("/chats")
	{
		chats.GET("/", chatCtl.List)
		chats.POST("/", chatCtl.Send)
		chats.POST("/images", uploadCtl.UploadImage)
		chats.POST("/:id/mark-read", chatCtl.MarkRead)
		chats.POST("/:id/revoke", chatCtl.Revoke)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/user-health-progress", reportCtl.HealthProgress)
		reports.GET("/user-workout-stats", reportCtl.WorkoutStats)
		reports.GET("/user-meal-stats", reportCtl.MealStats)
		reports.GET("/expert-client-progress", reportCtl.ExpertClientProgress)
	}

	api.POST("/devices", deviceCtl.Register)
	api.POST("/notifications/toggle", deviceCtl.ToggleNotifications)
	api.GET("/ws", rtCtl.Connect)

	return r
}
