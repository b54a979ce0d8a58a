// Command adminctl creates accounts directly in the credential store. It is
// the only way to create a user with a role other than the ones the public
// registration endpoint accepts, and the password is read without echo.
//
//	POSTGRES_DSN=... adminctl -username root -role admin
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

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/auth"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/store"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "adminctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("adminctl", flag.ContinueOnError)
	username := fs.String("username", "", "username to create")
	role := fs.String("role", string(models.RoleAdmin), "role to assign")
	dsn := fs.String("dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN")
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return errors.New("-username is required")
	}

	password, err := readPassword(out)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("empty password")
	}

	pool, err := store.Connect(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pool.Close()
	pg := store.NewPostgresStore(pool)
	if err := pg.Migrate(ctx); err != nil {
		return err
	}

	hasher, err := auth.NewPasswordHasher(*cost)
	if err != nil {
		return err
	}
	// Register never touches the token service.
	svc := auth.NewService(pg, hasher, nil)

	u, err := svc.Register(ctx, *username, password, models.Role(*role))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s with role %s\n", u.Username, u.Role)
	return nil
}

// readPassword prompts twice without echo when stdin is a terminal, and
// reads a single line otherwise.
func readPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
