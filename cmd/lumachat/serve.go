// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/lumachat/lumachat/internal/chat"
	chatpg "github.com/lumachat/lumachat/internal/chat/postgres"
	"github.com/lumachat/lumachat/internal/config"
	"github.com/lumachat/lumachat/internal/httpapi"
	"github.com/lumachat/lumachat/internal/identity"
	identitypg "github.com/lumachat/lumachat/internal/identity/postgres"
	"github.com/lumachat/lumachat/internal/logging"
	"github.com/lumachat/lumachat/internal/observability"
	"github.com/lumachat/lumachat/internal/store"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the LumaChat API server",
		Long: `Start the LumaChat API server, which serves the authentication and
chat endpoints along with a separate observability listener.`,
		RunE: runServe,
	}

	def := config.Default()
	cmd.Flags().String("addr", def.Addr, "API listen address")
	cmd.Flags().String("metrics_addr", def.MetricsAddr, "observability listen address")
	cmd.Flags().String("store", def.Store, "storage backend (memory or postgres)")
	cmd.Flags().String("database_url", def.DatabaseURL, "PostgreSQL connection string")
	cmd.Flags().String("log_format", def.LogFormat, "log output format (text or json)")
	cmd.Flags().String("log_level", def.LogLevel, "minimum log level")
	cmd.Flags().Int("message_cap", def.MessageCap, "messages retained per user")
	cmd.Flags().Int("kdf_iterations", def.KDFIterations, "PBKDF2 iteration count for new passwords")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("lumachat", version, logging.Options{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		users    identity.UserRepository
		sessions identity.SessionRepository
		messages chat.MessageRepository
	)

	switch cfg.Store {
	case config.StorePostgres:
		pool, connErr := store.Connect(ctx, cfg.DatabaseURL)
		if connErr != nil {
			return connErr
		}
		defer pool.Close()

		users = identitypg.NewUserRepository(pool)
		sessions = identitypg.NewSessionRepository(pool)
		messages = chatpg.NewMessageRepository(pool)
	default:
		users = identity.NewMemoryUserRepository()
		sessions = identity.NewMemorySessionRepository()
		messages = chat.NewMemoryMessageRepository()
	}

	obsServer := observability.NewServer(cfg.MetricsAddr, nil)
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.With("operation", "start observability server").Wrap(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			slog.Error("stopping observability server", "error", stopErr)
		}
	}()

	svc, err := identity.NewService(users, sessions, identity.NewPBKDF2Hasher(cfg.KDFIterations))
	if err != nil {
		return err
	}

	log, err := chat.NewLog(messages, cfg.MessageCap, obsServer.Metrics())
	if err != nil {
		return err
	}

	apiServer, err := httpapi.NewServer(cfg.Addr, svc, log, obsServer.Metrics())
	if err != nil {
		return err
	}

	apiErrCh, err := apiServer.Start()
	if err != nil {
		return oops.With("operation", "start api server").Wrap(err)
	}

	slog.Info("lumachat running",
		"addr", apiServer.Addr(),
		"metrics_addr", obsServer.Addr(),
		"store", cfg.Store,
		"message_cap", cfg.MessageCap,
	)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err = <-apiErrCh:
		if err != nil {
			slog.Error("api server failed", "error", err)
		}
	case err = <-obsErrCh:
		if err != nil {
			slog.Error("observability server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if stopErr := apiServer.Stop(shutdownCtx); stopErr != nil {
		slog.Error("stopping api server", "error", stopErr)
	}

	return err
}
