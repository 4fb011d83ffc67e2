package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"meetme/internal/availability"
	"meetme/internal/config"
	"meetme/internal/google"
	"meetme/internal/timeparse"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "meetme",
		Usage: "Find free time across your calendars and agree on a meeting slot.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultPath, Usage: "Path to the YAML config file."},
		},
		Commands: []*cli.Command{
			authCommand(),
			calendarsCommand(),
			freeCommand(),
			meetingCommand(),
		},
	}
}

// reportError prints input errors with the formats that would have been
// accepted; anything else is logged.
func reportError(err error) {
	var formatErr *timeparse.FormatError
	var windowErr *availability.InvalidWindowError
	var credErr *google.CredentialError
	switch {
	case errors.As(err, &formatErr):
		fmt.Fprintf(os.Stderr, "Could not read %q. Accepted formats: %s\n",
			formatErr.Text, strings.Join(formatErr.Accepted, ", "))
	case errors.As(err, &windowErr):
		fmt.Fprintf(os.Stderr, "That window does not work: %s\n", windowErr.Reason)
	case errors.As(err, &credErr):
		fmt.Fprintf(os.Stderr, "Account %q is not authorized (%v). Run 'meetme auth' first.\n", credErr.Account, credErr.Err)
	default:
		slog.Error("Application failed", "error", err)
	}
}

// appEnv is what every command needs once the config is loaded.
type appEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	loc    *time.Location
}

func loadEnv(c *cli.Context) (*appEnv, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &appEnv{cfg: cfg, logger: setupLogger(cfg.LogLevel), loc: loc}, nil
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Action: func(c *cli.Context) error {
			rt, err := loadEnv(c)
			if err != nil {
				return err
			}
			rt.logger.Info("Starting Google authentication flow.")

			oauthConfig, err := google.GetOAuthConfigForAuthFlow(rt.cfg.Google.ClientID, rt.cfg.Google.ClientSecret)
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Fprintf(c.App.Writer, "Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Fprint(c.App.Writer, "Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, oauthConfig, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Fprint(c.App.Writer, "Enter a name for this account (e.g., 'personal', 'work'): ")
			accountName, _ := reader.ReadString('\n')
			accountName = strings.TrimSpace(accountName)
			if accountName == "" {
				return errors.New("an account name is required")
			}
			tokenFile := google.TokenPath(rt.cfg.Google.TokenDir, accountName)

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			rt.logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
