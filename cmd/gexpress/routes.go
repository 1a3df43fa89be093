package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/azizndao/gexpress"
	"github.com/azizndao/gexpress/router"
)

func routesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the demo application's layer table",
		Long: `Print every registered layer in dispatch order: its index, kind,
pattern and, for routes, the methods it answers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(gexpress.Config{})
			defer a.close()
			return printRoutes(cmd.OutOrStdout(), a.server.Router().Routes(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printRoutes(w io.Writer, routes []router.RouteInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(routes)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tKIND\tPATTERN\tMETHODS")
	for _, info := range routes {
		methods := strings.Join(info.Methods, ",")
		if methods == "" {
			methods = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", info.Index, info.Kind, info.Pattern, methods)
	}
	return tw.Flush()
}
