package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/leaf-oneplus/todolist/internal/config"
	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/leaf-oneplus/todolist/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// init-admin creates the first super admin account, or resets its password if
// the login name is already taken.
func main() {
	if len(os.Args) != 4 {
		fmt.Println("Usage: init-admin <username> <login-name> <password>")
		os.Exit(1)
	}

	username, loginName, password := os.Args[1], os.Args[2], os.Args[3]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(password) < cfg.PasswordMinLength {
		log.Fatalf("Password must be at least %d characters", cfg.PasswordMinLength)
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

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var id int64
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, login_name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (login_name) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role, updated_at = NOW()
		RETURNING id
	`, username, loginName, string(hash), models.RoleSuperAdmin).Scan(&id)
	if err != nil {
		log.Fatalf("Failed to create super admin: %v", err)
	}

	fmt.Printf("Super admin %q ready (id %d)\n", loginName, id)
}
