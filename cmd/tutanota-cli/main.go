// Command tutanota-cli exposes the library's operations — auth check,
// logout, profile, and folder/mail listing — as a thin command-line
// front end.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tutanotacli "github.com/digitalWestie/tutanota-cli"
	"github.com/digitalWestie/tutanota-cli/internal/prompt"
)

// ClientInterface defines the client operations used by the CLI commands.
// This allows for easy mocking in tests.
type ClientInterface interface {
	CheckAuth(ctx context.Context) (*tutanotacli.AuthStatus, error)
	Logout() error
	Profile(ctx context.Context) (*tutanotacli.Profile, error)
	ListFolders(ctx context.Context) ([]tutanotacli.Folder, error)
	ListMails(ctx context.Context, folderID string) ([]tutanotacli.Mail, error)
}

// Config holds the I/O configuration for the commands.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config using standard I/O.
func DefaultConfig() *Config {
	return &Config{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// clientFactory creates the client used by the commands. Replaced in tests.
var clientFactory = func(cfg *Config, verbose bool) (ClientInterface, error) {
	if err := prompt.LoadDotEnv(); err != nil {
		return nil, err
	}
	creds, err := prompt.Credentials(cfg.Stdin, cfg.Stdout, cfg.Stderr)
	if err != nil {
		return nil, err
	}
	return tutanotacli.New(creds,
		tutanotacli.WithBaseURL(prompt.BaseURL()),
		tutanotacli.WithVerbose(verbose),
	)
}

// exitFunc is the function called to exit the program. Replaced in tests.
var exitFunc = os.Exit

func main() {
	if err := run(os.Args, DefaultConfig()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
	}
}

func run(args []string, cfg *Config) error {
	if len(args) < 2 {
		return errors.New("usage: tutanota-cli <auth|profile|folders|mails> ...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch args[1] {
	case "auth":
		return runAuth(ctx, args[2:], cfg)
	case "profile":
		return runProfile(ctx, args[2:], cfg)
	case "folders":
		return runFolders(ctx, args[2:], cfg)
	case "mails":
		return runMails(ctx, args[2:], cfg)
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func runAuth(ctx context.Context, args []string, cfg *Config) error {
	if len(args) < 1 {
		return errors.New("usage: tutanota-cli auth <check|logout> [--json] [--verbose]")
	}

	switch args[0] {
	case "check":
		fs := flag.NewFlagSet("auth check", flag.ContinueOnError)
		asJSON := fs.Bool("json", false, "emit {ok, userId, sessionId} as JSON")
		verbose := fs.Bool("verbose", false, "enable verbose logging")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		client, err := clientFactory(cfg, *verbose)
		if err != nil {
			return writeAuthCheckFailure(cfg, *asJSON, err)
		}
		status, err := client.CheckAuth(ctx)
		if err != nil {
			return writeAuthCheckFailure(cfg, *asJSON, err)
		}

		if *asJSON {
			return json.NewEncoder(cfg.Stdout).Encode(map[string]any{
				"ok":        true,
				"userId":    status.UserID,
				"sessionId": status.SessionID,
			})
		}
		fmt.Fprintf(cfg.Stdout, "ok: authenticated as %s\n", status.UserID)
		return nil

	case "logout":
		client, err := clientFactory(cfg, false)
		if err != nil {
			return err
		}
		if err := client.Logout(); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Fprintln(cfg.Stdout, "logged out")
		return nil

	default:
		return fmt.Errorf("unknown auth subcommand: %s", args[0])
	}
}

// writeAuthCheckFailure writes the failure form of auth check's output and
// returns a non-nil error so run's caller exits 1, regardless of output
// format.
func writeAuthCheckFailure(cfg *Config, asJSON bool, cause error) error {
	if asJSON {
		_ = json.NewEncoder(cfg.Stdout).Encode(map[string]any{
			"ok":    false,
			"error": cause.Error(),
		})
		return cause
	}
	fmt.Fprintf(cfg.Stdout, "not authenticated: %v\n", cause)
	return cause
}

func runProfile(ctx context.Context, args []string, cfg *Config) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "emit the profile as JSON")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := clientFactory(cfg, *verbose)
	if err != nil {
		return err
	}
	profile, err := client.Profile(ctx)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	if *asJSON {
		return json.NewEncoder(cfg.Stdout).Encode(profile)
	}
	fmt.Fprintf(cfg.Stdout, "email:       %s\n", profile.Email)
	fmt.Fprintf(cfg.Stdout, "userId:      %s\n", profile.UserID)
	fmt.Fprintf(cfg.Stdout, "mailGroupId: %s\n", profile.MailGroupID)
	return nil
}

func runFolders(ctx context.Context, args []string, cfg *Config) error {
	if len(args) < 1 || args[0] != "list" {
		return errors.New("usage: tutanota-cli folders list")
	}

	client, err := clientFactory(cfg, false)
	if err != nil {
		return err
	}
	folders, err := client.ListFolders(ctx)
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}
	return json.NewEncoder(cfg.Stdout).Encode(folders)
}

func runMails(ctx context.Context, args []string, cfg *Config) error {
	if len(args) < 2 || args[0] != "list" {
		return errors.New("usage: tutanota-cli mails list <folder-id>")
	}

	client, err := clientFactory(cfg, false)
	if err != nil {
		return err
	}
	mails, err := client.ListMails(ctx, args[1])
	if err != nil {
		return fmt.Errorf("list mails: %w", err)
	}
	return json.NewEncoder(cfg.Stdout).Encode(mails)
}
