// seed-admin creates or updates the platform superadmin user.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Credentials come from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD so they never
// land in the repo.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	email := strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required.")
		os.Exit(2)
	}
	name := strings.TrimSpace(os.Getenv("SEED_ADMIN_NAME"))
	if name == "" {
		name = "Platform Admin"
	}

	// Superadmins carry no tenant membership; tenant scoping is skipped here.
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Name:     name,
			Email:    email,
			Password: string(hashed),
			Role:     models.UserRoleSuperadmin,
			IsActive: utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create superadmin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created superadmin user: email=%q\n", email)
		return
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Updates(map[string]any{
		"password":  string(hashed),
		"name":      name,
		"is_active": utils.NewTrue(),
		"role":      models.UserRoleSuperadmin,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update superadmin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated superadmin user: email=%q\n", email)
}
