// Package cli административная утилита resourcectl: миграции, учетные записи,
// выпуск токенов и отчеты, работающие напрямую с базой данных.
package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shenikar/disaster_resource_system/internal/config"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/repository"
	"github.com/shenikar/disaster_resource_system/internal/service"
	"github.com/shenikar/disaster_resource_system/pkg/logger"
	"github.com/shenikar/disaster_resource_system/pkg/postgres"
)

// app зависимости, общие для всех команд
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	db        *pgxpool.Pool
	users     service.UserService
	resources service.ResourceService
}

var current = &app{}

var rootCmd = &cobra.Command{
	Use:   "resourcectl",
	Short: "Administrative tool for the disaster resource coordination backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return current.init(cmd.Context(), cmd.Name() != "migrate")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		current.close()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
}

// init загружает конфигурацию и, если нужно, подключается к PostgreSQL.
// Кэш Redis утилите не нужен: репозиторий работает без него.
func (a *app) init(ctx context.Context, connect bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New(cfg.LogLevel)

	if !connect {
		return nil
	}

	db, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.db = db

	userRepo := repository.NewUserRepository(db)
	resourceRepo := repository.NewResourceRepository(db, nil, cfg)
	a.users = service.NewUserService(userRepo, a.log)
	a.resources = service.NewResourceService(resourceRepo, userRepo, a.log, cfg)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// actorFlag разрешает значение флага --as в субъекта операции
func (a *app) actorFlag(ctx context.Context, raw string) (models.Actor, error) {
	if raw == "" {
		return models.Actor{}, fmt.Errorf("--as is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid --as user id %q: %w", raw, err)
	}
	return a.users.ResolveActor(ctx, id)
}
