package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/ai"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/handlers"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/metrics"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/middleware"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/services"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/utils"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // resumes arrive base64-encoded
	})

	app.Use(middleware.UserContextMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	// TranslateError maps unique-index violations to gorm.ErrDuplicatedKey,
	// which the request service relies on for its duplicate-invite backstop.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.Hackathon{},
		&models.Team{},
		&models.TeamRequest{},
		&models.Message{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	zlog := buildAILogger()
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing Gemini key is not fatal: scoring degrades per contract and
	// profile extraction reports the configuration error to the caller.
	scoreTimeout := time.Duration(envInt("SCORE_TIMEOUT_SECONDS", 30)) * time.Second
	gateway, err := ai.NewGateway(ctx, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"), scoreTimeout, zlog)
	if err != nil {
		if errors.Is(err, ai.ErrMissingAPIKey) {
			log.Println("⚠️  GEMINI_API_KEY not set — scoring will return degraded results, extraction will fail")
		} else {
			log.Fatal("failed to initialize gemini gateway:", err)
		}
	}
	scorer := ai.NewScorer(gateway, zlog)
	extractor := ai.NewExtractor(gateway, zlog)

	userService := services.NewUserService(db)
	hackathonService := services.NewHackathonService(db)
	teamService := services.NewTeamService(db)
	requestService := services.NewRequestService(db, teamService)
	matchService := services.NewMatchService(db, scorer, envInt("MATCH_CONCURRENCY", 4))
	messageService := services.NewMessageService(db)
	profileService := services.NewProfileService(extractor, services.NewGitHubClient(os.Getenv("GITHUB_API_BASE")))

	expiryWorker := workers.NewRequestExpiryWorker(db, time.Duration(envInt("REQUEST_EXPIRY_DAYS", 30))*24*time.Hour)
	expiryWorker.Start(ctx)

	hackathonService.StartLifecycleScheduler()

	handlers.SetupUserRoutes(app, userService)
	handlers.SetupHackathonRoutes(app, hackathonService, teamService)
	handlers.SetupTeamRoutes(app, teamService, messageService)
	handlers.SetupRequestRoutes(app, requestService)
	handlers.SetupMatchRoutes(app, matchService, profileService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// buildAILogger constructs the zap logger the ai packages use. DEBUG=true
// switches to the development config so prompt previews become visible.
func buildAILogger() *zap.Logger {
	var (
		zlog *zap.Logger
		err  error
	)
	if strings.ToLower(os.Getenv("DEBUG")) == "true" {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	return zlog
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using %d", name, raw, fallback)
		return fallback
	}
	return v
}
