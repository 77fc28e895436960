package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/repository"
)

// SeedAdmin ensures the initial admin account exists. Idempotent.
func SeedAdmin(ctx context.Context, users repository.UsersRepository, email, password string, logger *zap.Logger) error {
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	_, err = users.Insert(ctx, &domain.User{
		Username: "admin",
		Email:    email,
		Password: string(hash),
		UserType: domain.RoleAdmin,
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("seeded admin user", zap.String("email", email))
	return nil
}

// StandardVerticals is the default vertical set for a new deployment.
var StandardVerticals = []CreateVerticalRequest{
	{Name: "Water Quality", ShortCode: "WQ", Description: "Water Quality", Labels: []string{"WQ"}},
	{Name: "Water Quantity", ShortCode: "WF", Description: "Water Quantity", Labels: []string{"WF"}},
	{Name: "Waste Management", ShortCode: "WM", Description: "Waste Management", Labels: []string{"WM"}},
	{Name: "Streetlights", ShortCode: "ST", Description: "Streetlights", Labels: []string{"ST"}},
	{Name: "Energy Monitoring", ShortCode: "EM", Description: "Energy Monitoring", Labels: []string{"EM"}},
	{Name: "Air Quality", ShortCode: "AQ", Description: "Air Quality", Labels: []string{"AQ"}},
}

// SeedVerticals creates the standard verticals, skipping ones that exist.
// A remote failure on one vertical does not stop the rest.
func SeedVerticals(ctx context.Context, verticals VerticalService, logger *zap.Logger) {
	for _, req := range StandardVerticals {
		_, err := verticals.CreateVertical(ctx, req)
		var svcErr *Error
		switch {
		case err == nil:
			logger.Info("seeded vertical", zap.String("name", req.Name))
		case errors.As(err, &svcErr) && svcErr.Kind == KindConflict:
		default:
			logger.Warn("failed to seed vertical", zap.String("name", req.Name), zap.Error(err))
		}
	}
}
