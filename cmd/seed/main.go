package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"storefront-be/internal/auth"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type account struct {
	username string
	email    string
	password string
	role     auth.Role
}

var (
	adminAccount = account{"admin", "admin@ecommerce.com", "Admin123!@#", auth.RoleAdmin}
	testAccount  = account{"testuser", "user@ecommerce.com", "User123!@#", auth.RoleUser}
)

var sampleProducts = []product.CreateInput{
	{Name: `MacBook Pro 16"`, Description: "Powerful laptop with M3 Pro chip, 18GB unified memory, and 512GB SSD. Perfect for developers and creative professionals.", Price: decimal.RequireFromString("2499.99"), Stock: 25, Category: "Electronics"},
	{Name: "iPhone 15 Pro", Description: "Latest iPhone with A17 Pro chip, titanium design, and advanced camera system. 256GB storage.", Price: decimal.RequireFromString("1199.99"), Stock: 50, Category: "Electronics"},
	{Name: "AirPods Pro (2nd Gen)", Description: "Premium wireless earbuds with active noise cancellation and spatial audio support.", Price: decimal.RequireFromString("249.99"), Stock: 100, Category: "Accessories"},
	{Name: "Magic Mouse", Description: "Wireless rechargeable mouse with Multi-Touch surface for gesture controls.", Price: decimal.RequireFromString("79.99"), Stock: 150, Category: "Accessories"},
	{Name: "Magic Keyboard", Description: "Wireless keyboard with improved scissor mechanism and rechargeable battery.", Price: decimal.RequireFromString("99.99"), Stock: 120, Category: "Accessories"},
	{Name: "iPad Air", Description: "10.9-inch Liquid Retina display with M1 chip. 64GB storage with Wi-Fi.", Price: decimal.RequireFromString("599.99"), Stock: 75, Category: "Electronics"},
	{Name: "Apple Watch Series 9", Description: "Smartwatch with advanced health features, always-on display, and GPS.", Price: decimal.RequireFromString("399.99"), Stock: 80, Category: "Wearables"},
	{Name: "USB-C to USB-C Cable", Description: "Durable 2-meter charging cable supporting fast charging and data transfer.", Price: decimal.RequireFromString("19.99"), Stock: 300, Category: "Accessories"},
	{Name: "Studio Display", Description: "27-inch 5K Retina display with 12MP Ultra Wide camera and six-speaker sound system.", Price: decimal.RequireFromString("1599.99"), Stock: 20, Category: "Electronics"},
	{Name: "HomePod mini", Description: "Compact smart speaker with rich 360-degree audio and Siri integration.", Price: decimal.RequireFromString("99.99"), Stock: 90, Category: "Audio"},
}

func main() {
	cfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	s := &seeder{
		users:    user.NewRepository(database),
		products: product.NewRepository(database),
	}
	if err := s.run(context.Background()); err != nil {
		logger.L().Error("seeding failed", zap.Error(err))
		os.Exit(1)
	}
	logger.L().Info("database seeded")
}

// seeder fills an empty database. Every step is skipped when its data is
// already present, so running it twice is harmless.
type seeder struct {
	users    user.Repository
	products product.Repository
}

func (s *seeder) run(ctx context.Context) error {
	admin, err := s.ensureUser(ctx, adminAccount)
	if err != nil {
		return err
	}
	if _, err := s.ensureUser(ctx, testAccount); err != nil {
		return err
	}
	return s.ensureProducts(ctx, admin)
}

func (s *seeder) ensureUser(ctx context.Context, a account) (*user.User, error) {
	log := logger.L().With(zap.String("email", a.email))

	existing, err := s.users.FindByEmail(ctx, a.email)
	if err == nil {
		log.Info("user already exists, skipping")
		return existing, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("look up %s: %w", a.email, err)
	}

	hash, err := auth.HashPassword(a.password)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", a.email, err)
	}

	created, err := s.users.Create(ctx, &user.User{
		Username: a.username,
		Email:    a.email,
		Password: hash,
		Role:     a.role,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", a.email, err)
	}

	log.Info("user created", zap.String("role", string(a.role)))
	return created, nil
}

func (s *seeder) ensureProducts(ctx context.Context, owner *user.User) error {
	_, total, err := s.products.List(ctx, product.ListOptions{Page: 1, PageSize: 1})
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if total > 0 {
		logger.L().Info("products already exist, skipping", zap.Int("count", total))
		return nil
	}

	for _, in := range sampleProducts {
		if _, err := s.products.Create(ctx, owner.ID, in); err != nil {
			return fmt.Errorf("create product %q: %w", in.Name, err)
		}
	}

	logger.L().Info("sample products created", zap.Int("count", len(sampleProducts)))
	return nil
}
