package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const operatorKeyEnv = "STOREFRONT_NOTIFY_OPERATOR_KEY"

var (
	serverURL   string
	operatorKey string
	timeout     time.Duration
	jsonOut     bool
)

var rootCmd = &cobra.Command{
	Use:   "notifyctl",
	Short: "Operator CLI for the storefront notification server",
	Long: `notifyctl talks to a running notification server over HTTP.

Send a diagnostic or sample order email, inspect delivery logs, and
generate operator keys.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "notification server base URL")
	rootCmd.PersistentFlags().StringVar(&operatorKey, "key", os.Getenv(operatorKeyEnv), "operator key (default $"+operatorKeyEnv+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw JSON results")
}

// NewCommandContext bounds a command by the --timeout flag.
func NewCommandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
