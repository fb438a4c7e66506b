//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"responses-api/internal/config"
	"responses-api/internal/domain/conversation"
	"responses-api/internal/domain/llm"
	"responses-api/internal/domain/responses"
	"responses-api/internal/infrastructure/database"
	"responses-api/internal/infrastructure/llmprovider"
	"responses-api/internal/infrastructure/logger"
	conversationrepo "responses-api/internal/infrastructure/repository/conversation"
	"responses-api/internal/interfaces/httpserver"
)

var serviceSet = wire.NewSet(
	conversationrepo.NewPostgresRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.PostgresRepository)),
	conversation.NewReconstructor,
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	responses.NewService,
	wire.Bind(new(responses.Service), new(*responses.ServiceImpl)),
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		database.FromAppConfig,
		newGormDB,
		serviceSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.LLMAPIURL, cfg.LLMTimeout)
}
