// Command create-admin provisions an ADMIN account, which public registration cannot create.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/config"
	"github.com/learnhub/learnhub-api/internal/domain/user"
	"github.com/learnhub/learnhub-api/internal/pkg/database"
	"github.com/learnhub/learnhub-api/internal/pkg/password"
)

func main() {
	email := flag.String("email", "", "admin email")
	pwd := flag.String("password", "", "admin password (min 8 characters)")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "", "last name")
	flag.Parse()

	if err := validate(*email, *pwd); err != nil {
		log.Fatalf("Invalid input: %v", err)
	}

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DatabaseURL, database.PoolConfig{MaxOpen: 2, MaxIdle: 1, MaxLifetime: time.Minute})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close("postgres", db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := user.NewRepository(db)
	existing, err := repo.GetByEmail(ctx, user.NormalizeEmail(*email))
	if err != nil {
		log.Fatalf("GetByEmail error: %v", err)
	}
	if existing != nil {
		log.Fatalf("User %s already exists with role %s", existing.Email, existing.Role)
	}

	hash, err := password.Hash(*pwd)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        user.NormalizeEmail(*email),
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         user.RoleAdmin,
		Balance:      decimal.Zero,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, u); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Admin created: %s (%s)\n", u.Email, u.ID)
}

func validate(email, pwd string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email %q is not valid", email)
	}
	if len(pwd) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
