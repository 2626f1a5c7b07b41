package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leaf-oneplus/todolist/internal/config"
	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/leaf-oneplus/todolist/internal/handlers"
	authmw "github.com/leaf-oneplus/todolist/internal/middleware"
	"github.com/leaf-oneplus/todolist/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	tokenService := services.NewTokenService(db)
	hierarchyService := services.NewHierarchyService(db)
	accessService := services.NewAccessService(db, hierarchyService)
	userService := services.NewUserService(db, accessService, cfg.PasswordMinLength)
	todoService := services.NewTodoService(db, accessService, cfg.TodoTextMaxLength)

	authHandler := handlers.NewAuthHandler(userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService, hierarchyService)
	todoHandler := handlers.NewTodoHandler(todoService, userService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/refresh", authHandler.RefreshToken)
	api.Post("/auth/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", authHandler.Me)
	protected.Put("/users/me/password", authHandler.ChangePassword)

	protected.Get("/todos", todoHandler.List)
	protected.Post("/todos", todoHandler.Create)
	protected.Put("/todos/:id", todoHandler.SetCompleted)
	protected.Put("/todos/:id/reassign", todoHandler.Reassign)
	protected.Delete("/todos/:id", todoHandler.Delete)

	protected.Get("/users", userHandler.List)
	protected.Post("/users", userHandler.Create)
	protected.Put("/users/:id", userHandler.Update)
	protected.Delete("/users/:id", userHandler.Delete)
	protected.Put("/users/:id/password", userHandler.ResetPassword)
	protected.Get("/users/:id/managers", userHandler.GetManagers)
	protected.Post("/users/:id/managers", userHandler.AddManager)
	protected.Delete("/users/:id/managers/:managerId", userHandler.RemoveManager)

	protected.Get("/admin/users", userHandler.ListAll)
	protected.Get("/managers", userHandler.ListManagers)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
