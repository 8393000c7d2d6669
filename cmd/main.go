package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/senyabanana/creator-marketplace/internal/db"
	"github.com/senyabanana/creator-marketplace/internal/router"
	"github.com/senyabanana/creator-marketplace/internal/router/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "marketplace",
	Short:         "Creator marketplace API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory with app.env")
	rootCmd.AddCommand(serveCmd(), migrateCmd(), reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config.Config{}, fmt.Errorf("cannot load .env: %w", err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, fmt.Errorf("cannot load config: %w", err)
	}
	return cfg, cfg.Validate()
}

func serveCmd() *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

			if cfg.StorageDriver == config.PostgresDriver && !skipMigrations {
				if err = db.MigrateUp(cfg.MigrationURL, db.ConnString(cfg)); err != nil {
					return err
				}
				logger.Println("db migrated successfully")
			}

			app, err := newApplication(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.close()

			httpServer := router.NewServer(app.handler(), cfg.ServerAddress)
			logger.Printf("server is listening on %s...", cfg.ServerAddress)

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

			select {
			case s := <-interrupt:
				logger.Println("got signal: " + s.String())
			case err = <-httpServer.Notify():
				return fmt.Errorf("server failed: %w", err)
			}

			logger.Println("shutting down...")
			return httpServer.Shutdown()
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on start")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "migrate", Short: "Manage database schema"}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err = db.MigrateUp(cfg.MigrationURL, db.ConnString(cfg)); err != nil {
				return err
			}
			log.Println("db migrated successfully")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return db.MigrateDown(cfg.MigrationURL, db.ConnString(cfg), steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)
	return cmd
}
