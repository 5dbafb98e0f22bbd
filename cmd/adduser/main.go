// Command adduser creates an account from the command line, for
// bootstrapping an instance before the HTTP API is exposed.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/adapters/persistence/repositories"
	"expense-insight/internal/config"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/core/services"

	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Account email")
	fullName := fs.String("name", "", "Full name (optional)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbPath := fs.String("db", "", "Path to a SQLite database file (default: use DB_* settings)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> [-name <full name>] [-password <password>] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	dbCfg, err := databaseConfig(*dbPath)
	if err != nil {
		return err
	}
	db, err := config.OpenDatabase(dbCfg, nil)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer config.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	authService := services.NewAuthService(repositories.NewUserRepository(db), config.JWTConfig{})
	user, err := authService.Register(context.Background(), &services.RegisterInput{
		FullName: *fullName,
		Email:    *email,
		Password: password,
	})
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrConflict):
			return fmt.Errorf("user %s already exists", *email)
		case errors.As(err, &verr):
			return fmt.Errorf("invalid %s: %s", verr.Field, verr.Message)
		default:
			return fmt.Errorf("failed to create user: %w", err)
		}
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	return nil
}

// databaseConfig uses the SQLite file at path when given, the
// environment's DB_* settings otherwise
func databaseConfig(path string) (config.DatabaseConfig, error) {
	if path != "" {
		return config.DatabaseConfig{Driver: "sqlite", Path: path}, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.Database, nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
