// Command useradd creates an account with an explicit role. It is the only
// way besides ADMIN_EMAIL seeding to create an admin.
//
//	useradd -email root@example.com -role admin
//
// The password is read from the terminal without echo, or from stdin when
// stdin is not a terminal.
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
	"time"

	"github.com/vaughan-dsouza/fileshelf/internal/auth"
	"github.com/vaughan-dsouza/fileshelf/internal/config"
	"github.com/vaughan-dsouza/fileshelf/internal/db"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
	"github.com/vaughan-dsouza/fileshelf/internal/store"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "useradd:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	role := fs.String("role", string(models.RoleUser), "account role (user|admin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("STORE_DRIVER=%s keeps no accounts to add to", cfg.StoreDriver)
	}

	password, err := readPassword(os.Stdin)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := db.Connect(ctx, cfg.DSN(), db.PoolOptions{MaxOpen: 1, MaxIdle: 1})
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	svc := auth.NewService(store.NewPostgresUsers(conn, cfg.DBQueryTimeout), cfg.JWTSecret, auth.WithBcryptCost(cfg.BcryptCost))
	u, err := svc.CreateUser(ctx, *email, password, models.Role(*role))
	if err != nil {
		return err
	}

	fmt.Printf("created user %d (%s, %s)\n", u.ID, u.Email, u.Role)
	return nil
}

func readPassword(in *os.File) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return readLine(in)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
