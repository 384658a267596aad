package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "prepwise",
	Short: "AI mock interview practice",
	Long: "Prepwise runs mock technical interviews round by round, has an AI coach ask,\n" +
		"follow up on and score your answers, and tracks your progress over time.",
	SilenceUsage: true,
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PREPWISE_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "User the interviews belong to (overrides PREPWISE_USER, defaults to the OS user)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(roundCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(levelCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(followUpCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the --db flag when given, so that it wins over
// PREPWISE_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return "", nil
}

// resolveUser returns the --user flag, then PREPWISE_USER, then the name
// of the OS account.
func resolveUser(cmd *cobra.Command) (string, error) {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u, nil
	}
	if u := os.Getenv("PREPWISE_USER"); u != "" {
		return u, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve user: %w (use --user)", err)
	}
	return u.Username, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
