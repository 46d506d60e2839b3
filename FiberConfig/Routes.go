package FiberConfig

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Caribou/Config"
	"Caribou/Controllers"
	"Caribou/Models"
	"Caribou/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	authController := Controllers.NewAuthController(db)
	storeController := Controllers.NewStoreController(db)
	areaController := Controllers.NewAreaController(db)
	questionController := Controllers.NewQuestionController(db)
	visitController := Controllers.NewVisitController(db)
	actionPlanController := Controllers.NewActionPlanController(db)
	maintenanceController := Controllers.NewMaintenanceController(db)
	dashboardController := Controllers.NewDashboardController(db)
	exportController := Controllers.NewExportController(db)

	api := app.Group("/api")

	// Auth routes
	api.Post("/login", authController.Login)
	api.Post("/logout", authController.Logout)
	api.Get("/me", middleware.Verify(), authController.Me)

	// User administration
	users := api.Group("/users", middleware.Verify(Models.RoleAdmin))
	users.Get("/", authController.FetchUsers)
	users.Post("/", authController.RegisterUser)
	users.Put("/:id/profile", authController.UpdateProfile)

	// Dashboard and reports
	api.Get("/dashboard", middleware.Verify(), dashboardController.GetDashboard)
	api.Get("/reports/summary", middleware.Verify(), dashboardController.GetReportsSummary)

	// Stores and areas
	stores := api.Group("/stores", middleware.Verify())
	stores.Get("/", storeController.GetStores)
	stores.Get("/management", middleware.Verify(Models.RoleAdmin), storeController.GetStoreManagement)
	stores.Get("/:id", storeController.GetStore)
	stores.Post("/", middleware.Verify(Models.RoleAdmin), storeController.CreateStore)
	stores.Put("/:id", middleware.Verify(Models.RoleAdmin), storeController.UpdateStore)
	stores.Patch("/:id/status", middleware.Verify(Models.RoleAdmin), storeController.ToggleStoreStatus)

	areas := api.Group("/areas", middleware.Verify(Models.RoleAdmin))
	areas.Get("/", areaController.GetAreas)
	areas.Post("/", areaController.CreateArea)
	areas.Post("/:id/stores", areaController.AssignStore)
	areas.Post("/:id/users", areaController.AssignUsers)

	// Checklist form and question administration
	api.Get("/checklist/form", middleware.Verify(), questionController.GetChecklistForm)
	questions := api.Group("/questions", middleware.Verify(Models.RoleAdmin))
	questions.Get("/", questionController.GetQuestions)
	questions.Post("/", questionController.CreateQuestion)
	questions.Put("/:id", questionController.UpdateQuestion)
	questions.Patch("/:id/status", questionController.ToggleQuestion)
	categories := api.Group("/categories", middleware.Verify(Models.RoleAdmin))
	categories.Get("/", questionController.GetCategories)
	categories.Post("/", questionController.CreateCategory)
	categories.Patch("/:id/status", questionController.ToggleCategory)

	// Visits, drafts and history
	visits := api.Group("/visits", middleware.Verify())
	visits.Post("/", visitController.CreateVisit)
	visits.Get("/history", visitController.GetHistory)
	visits.Get("/history/export", exportController.ExportHistory)
	visits.Get("/drafts", visitController.GetDrafts)
	visits.Get("/drafts/:id", visitController.LoadDraft)
	visits.Post("/drafts/:id/finalize", visitController.FinalizeDraft)
	visits.Delete("/drafts/:id", visitController.DeleteDraft)
	visits.Get("/:id", visitController.GetVisit)
	visits.Get("/:id/export", exportController.ExportVisit)

	// Action plan
	actions := api.Group("/action-items", middleware.Verify())
	actions.Get("/", actionPlanController.GetActionItems)
	actions.Put("/bulk", actionPlanController.BulkUpdateActions)
	actions.Put("/:id", actionPlanController.UpdateActionItem)

	// Maintenance tickets
	tickets := api.Group("/maintenance", middleware.Verify())
	tickets.Get("/", maintenanceController.GetTickets)
	tickets.Post("/", maintenanceController.CreateTicket)
	tickets.Put("/:id", maintenanceController.UpdateTicket)
	tickets.Delete("/:id", maintenanceController.DeleteTicket)

	// Admin-wide CSV export
	api.Get("/exports/visits.csv", middleware.Verify(Models.RoleAdmin), exportController.ExportAllVisitsCSV)
}

// NewApp builds the fully wired fiber app. The auth cookie requires
// credentialed CORS, so the allowed origins come from configuration: fiber
// refuses AllowCredentials together with a wildcard origin.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: int(Config.Cfg.MaxUploadMB+1) * 1024 * 1024,
	})
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     Config.Cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Static("/attachments", Config.Cfg.AttachmentDir)
	return app
}

func FiberConfig() {
	app := NewApp()
	if err := app.Listen(":" + Config.Cfg.Port); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}
