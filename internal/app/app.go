package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/lib/pq"

	"github.com/allbirds/storefront/internal/config"
	"github.com/allbirds/storefront/internal/reservation"
)

type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	DB           *sql.DB
	Reservations reservation.Store
}

// NewApp opens the database and picks the reservation store: Redis when an
// address is configured, in-process memory otherwise.
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD environment variable is not set")
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Database.User,
		dbPassword,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var store reservation.Store
	if cfg.Redis.Addr != "" {
		log.Info("using redis reservation store", slog.String("addr", cfg.Redis.Addr))
		store = reservation.NewRedisStore(cfg.Redis.Addr)
	} else {
		store = reservation.NewMemoryStore()
	}

	app := &App{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Reservations: store,
	}

	return app, nil
}
