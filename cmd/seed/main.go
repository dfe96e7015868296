package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rohn-shah/diode-be/config"
	"github.com/rohn-shah/diode-be/internal/domain/entity"
	mongoinfra "github.com/rohn-shah/diode-be/internal/infrastructure/mongo"
	"github.com/rohn-shah/diode-be/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if !helpers.PasswordLongEnough(cfg.SeedAdminPassword) {
		log.Fatal("SEED_ADMIN_PASSWORD must be at least 8 characters long")
	}

	ctx := context.Background()
	mdb, err := mongoinfra.New(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoTimeout)
	if err != nil {
		logger.Fatalf("failed to connect to mongo: %v", err)
	}
	defer func() { _ = mdb.Close(context.Background()) }()

	hash, err := helpers.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}

	users := mongoinfra.NewUserRepository(mdb.Database())
	u, err := users.UpsertByEmail(ctx, &entity.User{
		Email:           cfg.SeedAdminEmail,
		FirstName:       "Admin",
		LastName:        "User",
		Role:            entity.RoleAdmin,
		Password:        hash,
		IsActive:        true,
		IsEmailVerified: true,
	})
	if err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
	helpers.LogInfo(logger, "seeded admin user", logrus.Fields{"id": u.ID.Hex(), "email": u.Email})
}
