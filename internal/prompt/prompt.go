// Package prompt resolves credentials and configuration from the
// environment first, loading a .env file if present, and falls back to an
// interactive terminal prompt — with a no-echo password read — when a
// value is missing.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/digitalWestie/tutanota-cli/internal/api"
)

const (
	EmailEnvVar    = "TUTANOTA_EMAIL"
	PasswordEnvVar = "TUTANOTA_PASSWORD"
	APIURLEnvVar   = "TUTANOTA_API_URL"

	DefaultAPIURL = "https://app.tuta.com"
)

// LoadDotEnv loads a .env file from the current directory into the
// process environment, if one exists. Missing files are not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// BaseURL returns TUTANOTA_API_URL, or DefaultAPIURL if unset.
func BaseURL() string {
	if url := os.Getenv(APIURLEnvVar); url != "" {
		return url
	}
	return DefaultAPIURL
}

// Credentials resolves email and password from the environment, prompting
// interactively for whichever is missing. The password prompt does not
// echo input.
func Credentials(stdin io.Reader, stdout, stderr io.Writer) (api.Credentials, error) {
	email := os.Getenv(EmailEnvVar)
	password := os.Getenv(PasswordEnvVar)

	reader := bufio.NewReader(stdin)

	if email == "" {
		fmt.Fprint(stdout, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return api.Credentials{}, fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	if password == "" {
		pw, err := readPassword(reader, stdout)
		if err != nil {
			return api.Credentials{}, fmt.Errorf("read password: %w", err)
		}
		password = pw
	}

	return api.Credentials{Email: email, Password: password}, nil
}

// readPassword reads a password from the controlling terminal without
// echoing it. Falls back to a plain line read through reader when stdin is
// not the controlling terminal (e.g. piped input in tests).
func readPassword(reader *bufio.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "Password: ")
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(stdout)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
