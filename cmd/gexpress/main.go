// Command gexpress runs the demo application and inspects its layer table.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "gexpress",
		Short: "Express-style routing and middleware dispatch for net/http",
		Long: `gexpress serves a demo application built on the gexpress router.

Configuration comes from environment variables (HOST, PORT, LOG_LEVEL,
ENABLE_*, CORS_*, RATE_LIMIT_*, ...), optionally loaded from an env file.`,
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(envFile, cmd.Flags().Changed("env-file"))
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file of KEY=value lines loaded into the environment")
	cmd.AddCommand(serveCmd(), routesCmd())
	return cmd
}

// loadEnv loads path without overriding variables already set. A missing
// default file is fine; a missing file named on the command line is not.
func loadEnv(path string, explicit bool) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return err
}
