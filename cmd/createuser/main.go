// Command createuser adds a blog account from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"blogdesk/internal/config"
	"blogdesk/internal/repository/sqlite"
	"blogdesk/internal/service"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("load config: %v", err)
		return 1
	}

	flags := pflag.NewFlagSet("createuser", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	dbPath := flags.String("db", cfg.Database.Path, "path to the sqlite database")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: createuser [--db PATH] USERNAME PASSWORD")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return 2
	}
	username, password := flags.Arg(0), flags.Arg(1)

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		logger.Errorf("open database: %v", err)
		return 1
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db, nil); err != nil {
		logger.Errorf("migrate database: %v", err)
		return 1
	}

	// account creation never touches stored images, so no storage backend is wired
	users := service.NewUserService(sqlite.NewUserRepository(db), sqlite.NewImageRepository(db), nil, logger)

	if _, err := users.Create(ctx, username, password); err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			fmt.Fprintf(stdout, "User '%s' already exists.\n", username)
		case errors.Is(err, service.ErrInvalidUser):
			fmt.Fprintln(stderr, "username and password must not be empty")
		case errors.Is(err, service.ErrPasswordTooLong):
			fmt.Fprintln(stderr, "password must not exceed 72 bytes")
		default:
			logger.Errorf("create user: %v", err)
		}
		return 1
	}

	fmt.Fprintf(stdout, "User '%s' has been created.\n", username)
	return 0
}
