package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/azizndao/gexpress"
)

func serveCmd() *cobra.Command {
	var (
		host string
		port string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo application",
		Long: `Run the demo application until SIGINT or SIGTERM.

The server exposes Prometheus metrics on /metrics and its layer table on
/debug/routes. In-flight requests get SHUTDOWN_TIMEOUT to finish.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags win over the environment, which New reads.
			for key, value := range map[string]string{"HOST": host, "PORT": port} {
				if value == "" {
					continue
				}
				if err := os.Setenv(key, value); err != nil {
					return err
				}
			}

			a := newApp(gexpress.Config{})
			defer a.close()

			a.server.Logger().Info("listening", "addr", "http://"+a.server.Address())
			return a.server.ListenWithGracefulShutdown()
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "interface to listen on (overrides HOST)")
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}
