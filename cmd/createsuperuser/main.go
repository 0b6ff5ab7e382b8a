// Command createsuperuser interactively creates a superuser account.
// It prompts for email, full name and password (no echo), refuses duplicate
// emails, and writes directly to the configured database.
package main

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/akapustin/itemhub/internal/common"
	"github.com/akapustin/itemhub/internal/server/config"
	"github.com/akapustin/itemhub/internal/server/repositories/repomanager"
	"github.com/akapustin/itemhub/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func getSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func getPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func getConfirmedPassword(w io.Writer) (string, error) {
	for {
		pw, err := getPassword(w, "Password: ")
		if err != nil {
			return "", err
		}
		if len(pw) == 0 {
			fmt.Fprintln(w, "Password is required.")
			continue
		}
		confirm, err := getPassword(w, "Confirm password: ")
		if err != nil {
			return "", err
		}
		if !bytes.Equal(pw, confirm) {
			fmt.Fprintln(w, "Passwords do not match. Try again.")
			continue
		}
		return string(pw), nil
	}
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)
	out := os.Stdout

	fmt.Fprintln(out, "Create a superuser")
	fmt.Fprintln(out, "------------------")

	email, err := getSimpleText(reader, "Email:", out)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if email == "" {
		log.Fatal("email is required")
	}

	fullName, err := getSimpleText(reader, "Full name (optional):", out)
	if err != nil {
		log.Fatalf("%v", err)
	}

	password, err := getConfirmedPassword(out)
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	rm := &repomanager.PostgresRepositoryManager{}
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	us := services.NewUserService(db, rm, cfg)

	if _, err := us.GetByEmail(ctx, email); err == nil {
		log.Fatalf("a user with email %q already exists", email)
	} else if !errors.Is(err, common.ErrNotFound) {
		log.Fatalf("%v", err)
	}

	user, err := us.Create(ctx, services.CreateUserInput{
		Email:       email,
		Password:    password,
		FullName:    fullName,
		IsSuperuser: true,
	})
	if err != nil {
		log.Fatalf("error creating superuser: %v", err)
	}

	fmt.Fprintf(out, "Superuser %q created successfully!\n", user.Email)
}
