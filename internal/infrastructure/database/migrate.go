package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"responses-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the responses domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Response{},
		&entities.InputItem{},
		&entities.OutputItem{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
