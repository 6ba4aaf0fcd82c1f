// Command locctl is a terminal client for the location saver API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"location_saver_backend/client"
	"location_saver_backend/platform/logger"

	"github.com/joho/godotenv"
)

const usage = `usage: locctl <command> [args]

  register <email> <password>
  login <email> <password>
  logout
  whoami
  list
  add <lat> <lon> <house number> <apartment or road> <Home|Office|FriendsAndFamily> <full address...>

LOCCTL_API_URL      API base (default http://localhost:8080/api/v1)
LOCCTL_CREDENTIALS  credential file (default <user config dir>/location-saver/credentials.json)`

var errUsage = errors.New(usage)

func main() {
	_ = godotenv.Load()
	log := logger.New(getEnv("APP_ENV", "development"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credPath, err := credentialsPath()
	if err != nil {
		log.Error("failed to resolve credential file", "error", err)
		os.Exit(1)
	}

	cli := newCLI(getEnv("LOCCTL_API_URL", "http://localhost:8080/api/v1"), client.NewFileCredentialStore(credPath), os.Stdout)
	if err := cli.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

type cli struct {
	auth      *client.AuthGateway
	addresses *client.AddressGateway
	out       io.Writer
}

func newCLI(baseURL string, creds client.CredentialStore, out io.Writer) *cli {
	auth := client.NewAuthGateway(baseURL, creds, nil)
	return &cli{
		auth:      auth,
		addresses: client.NewAddressGateway(baseURL, auth, nil),
		out:       out,
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch cmd, rest := args[0], args[1:]; cmd {
	case "register", "login":
		if len(rest) != 2 {
			return errUsage
		}
		authenticate := c.auth.Login
		if cmd == "register" {
			authenticate = c.auth.Register
		}
		user, err := authenticate(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "signed in as %s\n", user.Email)
		return nil
	case "logout":
		return c.auth.RevokeSession(ctx)
	case "whoami":
		user, ok := c.auth.CurrentUser()
		if !ok || !c.auth.IsAuthenticated() {
			fmt.Fprintln(c.out, "not signed in")
			return nil
		}
		fmt.Fprintln(c.out, user.Email)
		return nil
	case "list":
		items, err := c.addresses.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(c.out, items)
	case "add":
		req, err := parseAddress(rest)
		if err != nil {
			return err
		}
		saved, err := c.addresses.Create(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(c.out, saved)
	default:
		return errUsage
	}
}

func parseAddress(args []string) (client.CreateAddressRequest, error) {
	if len(args) < 6 {
		return client.CreateAddressRequest{}, errUsage
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return client.CreateAddressRequest{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return client.CreateAddressRequest{}, fmt.Errorf("longitude: %w", err)
	}
	return client.CreateAddressRequest{
		Latitude:        &lat,
		Longitude:       &lon,
		HouseNumber:     args[2],
		ApartmentOrRoad: args[3],
		Category:        args[4],
		FullAddress:     strings.Join(args[5:], " "),
	}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func credentialsPath() (string, error) {
	if path := os.Getenv("LOCCTL_CREDENTIALS"); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "location-saver", "credentials.json"), nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
