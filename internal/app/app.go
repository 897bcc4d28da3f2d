// Package app assembles repositories and services from configuration. Both the
// API server and crmctl build on it.
package app

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"spincrm/internal/config"
	"spincrm/internal/database"
	"spincrm/internal/domain/auth"
	"spincrm/internal/domain/client"
	"spincrm/internal/domain/lead"
	"spincrm/internal/pkg/jwt"
)

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Mongo    *mongo.Database
	Sessions *auth.Sessions
	Clients  *client.Service
	Leads    *lead.Service
}

// Models lists every table kept in SQL, whatever the store backend.
func Models(cfg *config.Config) []any {
	models := auth.Models()
	if cfg.StoreBackend == config.StoreSQL {
		models = append(models, client.Models()...)
		models = append(models, lead.Models()...)
	}
	return models
}

// Open connects to the configured stores and wires the services. pub receives
// committed client and lead changes and may be nil.
func Open(ctx context.Context, cfg *config.Config, pub client.Publisher, gormCfg *gorm.Config) (*App, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{}
	}
	db, err := database.ConnectWithConfig(cfg.DatabaseURL, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlxDB, err := database.SQLX(db)
	if err != nil {
		return nil, fmt.Errorf("wrap database: %w", err)
	}

	a := &App{Config: cfg, DB: db}

	var (
		clientRepo client.Repository
		leadRepo   lead.Repository
	)
	switch cfg.StoreBackend {
	case config.StoreMongo:
		mdb, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
		if err != nil {
			return nil, err
		}
		a.Mongo = mdb
		clientRepo = client.NewMongoRepository(mdb, database.CollectionClients, cfg.MongoTimeout)
		leadRepo = lead.NewMongoRepository(mdb, database.CollectionLeads, cfg.MongoTimeout)
	default:
		clientRepo = client.NewGormRepository(db)
		leadRepo = lead.NewSQLRepository(sqlxDB)
	}

	policy := lead.OpenPolicy()
	if cfg.StrictTransitions() {
		policy = lead.StrictPolicy()
	}

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	a.Sessions = auth.NewSessions(
		auth.NewUserRepository(db),
		auth.NewProfileRepository(sqlxDB),
		tokens,
		cfg.ProfileFetchTimeout,
	)

	var leadPub lead.Publisher
	if pub != nil {
		leadPub = pub
	}
	a.Clients = client.NewService(clientRepo, pub)
	a.Leads = lead.NewService(leadRepo, policy, leadPub)

	log.Printf("app wired: store=%s lead_policy_strict=%t", cfg.StoreBackend, policy.Strict())
	return a, nil
}

// Migrate creates the SQL tables for the configured backend.
func (a *App) Migrate() error {
	return database.Migrate(a.DB, Models(a.Config)...)
}

// Warm loads both collections so analytics have data before the first list call.
func (a *App) Warm(ctx context.Context) error {
	if _, err := a.Clients.List(ctx); err != nil {
		return fmt.Errorf("load clients: %w", err)
	}
	if _, err := a.Leads.List(ctx, lead.FilterAll); err != nil {
		return fmt.Errorf("load leads: %w", err)
	}
	return nil
}

// Close releases the database connections.
func (a *App) Close(ctx context.Context) {
	if a.Mongo != nil {
		if err := a.Mongo.Client().Disconnect(ctx); err != nil {
			log.Printf("mongo_disconnect_failed error=%q", err.Error())
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
