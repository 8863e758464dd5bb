// ABOUTME: Root command for the apptemplate admin console
// ABOUTME: Handles global flags, configuration and client construction

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/config"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command. Without a subcommand it launches the
// interactive console.
var rootCmd = &cobra.Command{
	Use:   "apptemplate",
	Short: "Admin console for the AppTemplate API",
	Long: `apptemplate is a terminal administrative console for the AppTemplate REST API.

Run it without arguments for the interactive console, or use the
subcommands for scripted flows (registration, email confirmation,
password recovery, admin listings).

Environment Variables:
  APPTEMPLATE_API_URL     Backend API URL (default: http://localhost:5070/api/v1)
  APPTEMPLATE_IDENTIFIER  Sign-in identifier for non-interactive commands
  APPTEMPLATE_PASSWORD    Sign-in password for non-interactive commands`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides APPTEMPLATE_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env/.env, or default (in
// priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultAPIURL
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newClient builds an API client against the resolved URL with the
// configured request timeout.
func newClient() *api.Client {
	timeout := 30 * time.Second
	if cfg, err := config.Load(); err == nil {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	return api.NewWithTimeout(GetAPIURL(), timeout)
}

// newLogger builds the process logger per LOG_LEVEL / LOG_FORMAT. It
// writes to stderr so command output stays parseable.
func newLogger() *slog.Logger {
	cfg, err := config.Load()
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// signIn authenticates the client from APPTEMPLATE_IDENTIFIER and
// APPTEMPLATE_PASSWORD for non-interactive commands. Cookie sessions are
// process-scoped, so each command signs in for itself.
func signIn(ctx context.Context, c *api.Client, w io.Writer) error {
	identifier := os.Getenv("APPTEMPLATE_IDENTIFIER")
	password := os.Getenv("APPTEMPLATE_PASSWORD")
	if identifier == "" || password == "" {
		return fmt.Errorf("set APPTEMPLATE_IDENTIFIER and APPTEMPLATE_PASSWORD to authenticate")
	}

	if err := c.InitAntiforgery(ctx); err != nil {
		return err
	}
	result, err := c.Login(ctx, identifier, password, false)
	if err != nil {
		return err
	}
	if result.TwoFactorRequired {
		return fmt.Errorf("account requires two-factor authentication; use the interactive console")
	}
	return nil
}
