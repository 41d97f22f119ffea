package FiberConfig

import (
	"log"

	"RestroManage/Config"
	"RestroManage/Controllers"
	"RestroManage/Models"
	"RestroManage/Storage"
	"RestroManage/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *Config.Settings, chooser *Storage.Chooser) {
	authController := Controllers.NewAuthController(db, cfg.SecretKey, cfg.TokenExpiryMinutes)
	taskController := Controllers.NewTaskController(db)
	userController := Controllers.NewUserController(db)
	nfcController := Controllers.NewNFCController(db)
	exportController := Controllers.NewExportController(db)
	healthController := Controllers.NewHealthController(db, chooser)

	ingestor := Storage.NewIngestor(db, chooser, cfg)
	migrator := Storage.NewMigrator(db, chooser)
	uploadController := Controllers.NewUploadController(db, ingestor, chooser)
	storageController := Controllers.NewStorageAdminController(db, migrator, chooser)

	app.Get("/health", healthController.Health)

	verify := middleware.Verify(cfg.SecretKey)

	// Auth routes
	auth := app.Group("/api/auth")
	auth.Post("/register", authController.RegisterRestaurant)
	auth.Post("/login", authController.Login)
	auth.Get("/validate-token", verify, authController.ValidateToken)
	auth.Post("/validate-pin", verify, authController.ValidatePin)

	// Task routes
	tasks := app.Group("/api/tasks", verify)
	tasks.Get("/", taskController.GetTasks)
	tasks.Post("/", taskController.CreateTask)
	tasks.Get("/:id", taskController.GetTask)
	tasks.Put("/:id", taskController.UpdateTask)
	tasks.Delete("/:id", taskController.DeleteTask)
	tasks.Post("/:id/submit", taskController.SubmitTask)
	tasks.Post("/:id/approve", taskController.ApproveTask)
	tasks.Post("/:id/decline", taskController.DeclineTask)
	tasks.Get("/:id/media", taskController.GetTaskMedia)

	// Staff routes
	users := app.Group("/api/users", verify)
	users.Get("/", userController.GetUsers)
	users.Post("/", userController.CreateUser)
	users.Patch("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)

	// Evidence upload routes
	uploads := app.Group("/api/upload", verify)
	uploads.Get("/health", uploadController.UploadHealth)
	uploads.Post("/image", uploadController.UploadImage)
	uploads.Post("/video", uploadController.UploadVideo)
	uploads.Get("/serve/:taskId/:filename", uploadController.ServeFile)
	uploads.Delete("/media/:id", uploadController.DeleteMedia)

	app.Get("/api/media", verify, uploadController.Gallery)

	// Already-issued local evidence URLs resolve here
	app.Static("/uploads", cfg.UploadDirectory)

	// NFC cleaning routes
	nfc := app.Group("/api/nfc", verify)
	nfc.Post("/tap", nfcController.Tap)
	nfc.Get("/assets/:asset_id/logs", nfcController.GetAssetLogs)
	nfc.Get("/assets/:asset_id/stats", nfcController.GetAssetStats)

	// Admin storage routes
	storage := app.Group("/api/storage", verify)
	storage.Post("/test", storageController.TestConnection)
	storage.Post("/migrate", storageController.StartMigration)
	storage.Post("/migrate/stop", storageController.StopMigration)
	storage.Get("/migrate/status", storageController.GetMigrationStatus)

	// Schedule export
	app.Get("/api/export/schedule", verify, exportController.ExportSchedule)

	// Request log inspection
	logController := Controllers.NewLogController()
	app.Get("/api/logs", verify, logController.GetLogs)
	app.Get("/api/logs/stats", verify, logController.GetLogStats)
}

func FiberConfig(cfg *Config.Settings) {
	app := fiber.New(fiber.Config{
		// Leave headroom over the evidence size cap for the rest of the
		// multipart body.
		BodyLimit: int(cfg.MaxFileSize) + 1024*1024,
	})
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chooser := Storage.NewChooser(cfg)
	SetupRoutes(app, Models.DB, cfg, chooser)

	log.Printf("Server up on %s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
