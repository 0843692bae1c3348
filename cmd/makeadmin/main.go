// Command makeadmin grants the administrator role to an existing account.
//
//	makeadmin user@example.com
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kirinyoku/tour-go/internal/config"
	"github.com/kirinyoku/tour-go/internal/postgres"
	postgresrepo "github.com/kirinyoku/tour-go/internal/repository/postgres"
	"github.com/kirinyoku/tour-go/internal/service/accounts"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: makeadmin <email>")
		os.Exit(1)
	}

	if err := run(os.Args[1]); err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			logger.Error("user not found", "email", os.Args[1])
		} else {
			logger.Error("makeadmin failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	store := postgresrepo.NewStore(pool)
	svc := accounts.New(store.Users(), nil, nil, nil)

	u, already, err := svc.PromoteByEmail(ctx, email)
	if err != nil {
		return err
	}

	if already {
		fmt.Printf("%s is already an admin\n", u.Email)
		return nil
	}

	fmt.Printf("%s is now an admin\n", u.Email)
	return nil
}
