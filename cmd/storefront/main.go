package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/agentfashion/storefront/internal/app"
	"github.com/agentfashion/storefront/pkg/config"
	"github.com/agentfashion/storefront/pkg/logger"
)

var (
	// Global flags
	baseURL  string
	logLevel string

	storefront *app.App
	startup    *app.Startup
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "AgentFashion storefront client",
	Long: `storefront drives the AgentFashion backend from the terminal.

The session, theme and wishlist persist between runs in the configured storage
driver (AGENTFASHION_STORAGE_DRIVER). A restored session is trusted until the
backend rejects it.`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if storefront != nil {
			_ = storefront.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base url (overrides AGENTFASHION_API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides AGENTFASHION_LOG_LEVEL)")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(catalogCmd, brandsCmd)
	rootCmd.AddCommand(cartCmd, wishlistCmd)
	rootCmd.AddCommand(themeCmd, chatCmd)
}

// bootstrap loads configuration, builds the stores and starts the background
// catalog and cart loads. Commands that read them call awaitStartup.
func bootstrap(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	if baseURL != "" {
		if err := os.Setenv(config.EnvAPIBaseURL, baseURL); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.App.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(level),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      cmd.ErrOrStderr(),
	})

	storefront, err = app.New(cmd.Context(), app.Params{
		Config:     cfg,
		Logger:     logg,
		Registerer: prometheus.NewRegistry(),
	})
	if err != nil {
		return err
	}
	startup = storefront.Start(cmd.Context())
	return nil
}

// awaitStartup waits for the startup loads. A failed cart fetch is reported but
// does not stop the command.
func awaitStartup(cmd *cobra.Command) {
	if startup == nil {
		return
	}
	if err := startup.Wait(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
