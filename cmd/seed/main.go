// Command seed replaces the tours and users tables with sample data.
// Existing rows are deleted first.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kirinyoku/tour-go/internal/auth"
	"github.com/kirinyoku/tour-go/internal/config"
	"github.com/kirinyoku/tour-go/internal/postgres"
	postgresrepo "github.com/kirinyoku/tour-go/internal/repository/postgres"
	"github.com/kirinyoku/tour-go/internal/uow"
)

func main() {
	force := flag.Bool("force", false, "allow seeding when APP_ENV=production")
	cost := flag.Int("bcrypt-cost", 10, "bcrypt cost for sample passwords")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if os.Getenv("APP_ENV") == "production" && !*force {
		logger.Error("refusing to wipe a production database; pass -force to override")
		os.Exit(1)
	}

	if err := run(logger, *cost); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cost int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.LoadPostgres()
	if err != nil {
		return err
	}

	pool, err := postgres.New(ctx, postgres.Config{DSN: cfg.DSN()})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	store := postgresrepo.NewStore(pool)
	hasher := auth.NewHasher(cost)

	users, err := sampleUsers(hasher)
	if err != nil {
		return err
	}
	tours := sampleTours()

	err = uow.NewUoW(store).Do(ctx, func(ctx context.Context, _ func(uow.AfterCommit)) error {
		removed, err := store.Tours().DeleteAll(ctx)
		if err != nil {
			return err
		}
		logger.Info("existing tours removed", "count", removed)

		removed, err = store.Users().DeleteAll(ctx)
		if err != nil {
			return err
		}
		logger.Info("existing users removed", "count", removed)

		for i := range tours {
			if err := store.Tours().Create(ctx, &tours[i]); err != nil {
				return fmt.Errorf("tour %q: %w", tours[i].Name, err)
			}
		}

		for i := range users {
			if err := store.Users().Create(ctx, &users[i]); err != nil {
				return fmt.Errorf("user %q: %w", users[i].Email, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, t := range tours {
		fmt.Printf("  %s - $%.0f\n", t.Name, t.Price)
	}
	logger.Info("seeding complete", "tours", len(tours), "users", len(users))

	return nil
}
