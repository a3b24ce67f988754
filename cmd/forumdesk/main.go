package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"forumdesk/internal/collection"
	"forumdesk/internal/config"
	"forumdesk/internal/domain"
	"forumdesk/internal/repository"
	"forumdesk/internal/repository/postgres"
	"forumdesk/internal/repository/sqlite"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "forumdesk",
		Short:         "Forum repository administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(initCommand(), statsCommand(), seedCommand())
	return root
}

// initCommand writes a default config file so a new installation has
// something to edit.
func initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists at %s", path)
			}
			cfg := config.DefaultConfig()
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}

// statsCommand prints per-collection record counts.
func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print record counts per collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.store.Close()

			fmt.Printf("posts:      %d\n", app.posts.Count(ctx))
			fmt.Printf("replies:    %d\n", app.replies.Count(ctx))
			fmt.Printf("threads:    %d\n", app.threads.Count(ctx))
			fmt.Printf("requests:   %d\n", app.requests.Count(ctx))
			fmt.Printf("parameters: %d\n", app.parameters.Count(ctx))
			return nil
		},
	}
}

// seedCommand creates a starter thread and a welcome post when the store is
// empty, so a fresh install has something on screen.
func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed an empty store with starter content",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.store.Close()

			if app.threads.Count(ctx) > 0 || app.posts.Count(ctx) > 0 {
				return fmt.Errorf("store is not empty, refusing to seed")
			}

			if r := app.threads.Create(ctx, domain.DefaultThread, "Open discussion", "admin"); !r.OK {
				return fmt.Errorf("seed thread: %s", r.Message)
			}
			r := app.posts.Create(ctx, "Welcome", "Say hello and introduce yourself.", "admin", domain.DefaultThread)
			if !r.OK {
				return fmt.Errorf("seed post: %s", r.Message)
			}
			app.log.Info().Str("post", r.ID).Msg("seeded starter content")
			return nil
		},
	}
}

type app struct {
	log        zerolog.Logger
	store      repository.Store
	posts      *collection.PostCollection
	replies    *collection.ReplyCollection
	threads    *collection.ThreadCollection
	requests   *collection.RequestCollection
	parameters *collection.ParameterCollection
}

// openApp wires config, logger, store and the five collections.
func openApp(ctx context.Context) (*app, error) {
	cfg, path, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg.LogLevel)
	if path != "" {
		log.Debug().Str("path", path).Msg("loaded config")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		log:        log,
		store:      store,
		posts:      collection.NewPostCollection(store, log),
		replies:    collection.NewReplyCollection(store, log),
		threads:    collection.NewThreadCollection(store, log),
		requests:   collection.NewRequestCollection(store, log),
		parameters: collection.NewParameterCollection(store, log),
	}, nil
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return sqlite.New(cfg.Storage.Path)
	case config.BackendPostgres:
		return postgres.New(ctx, cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
