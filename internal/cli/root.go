// Package cli provides the loanctl command tree: a terminal rendition of the
// loan dashboards that talks to the gateway with the same typed client the
// gateway uses to reach the backend.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// Global flags
var (
	gatewayURL string
	tokenFile  string
	verbose    bool
	timeout    time.Duration
)

var (
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version information, set by main.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const defaultGateway = "http://localhost:8080"

// NewRootCmd builds the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "loanctl",
		Short:         "Console client for the loan gateway",
		Long:          "loanctl lists, filters and acts on loans, payments and users through the loan gateway.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&gatewayURL, "gateway", envOr("LOANCTL_GATEWAY", defaultGateway), "Gateway base URL")
	cmd.PersistentFlags().StringVar(&tokenFile, "token-file", os.Getenv("LOANCTL_TOKEN_FILE"), "File holding the session token (default: user config dir)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log HTTP calls to stderr")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-request timeout")

	cmd.SetVersionTemplate(fmt.Sprintf("loanctl %s (built %s)\n", Version, BuildTime))

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newLoansCmd())
	cmd.AddCommand(newLendersCmd())
	cmd.AddCommand(newPaymentsCmd())
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newSettingsCmd())
	cmd.AddCommand(newDashboardCmd())

	return cmd
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		if _, ok := <-sigChan; ok {
			fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
			cancelFunc()
		}
	}()

	return NewRootCmd().ExecuteContext(rootContext)
}

// GetContext returns the signal-aware root context.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return GetContext()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
