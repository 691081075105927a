package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/starwalkn/staffgate"
)

var (
	methodStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Width(7)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	opStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	upstreamKey = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table of the configured server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := staffgate.LoadConfig(resolveConfigPath())
		if err != nil {
			return err
		}

		printRoutes(cmd.OutOrStdout(), cfg)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func printRoutes(w io.Writer, cfg staffgate.Config) {
	routes := staffgate.Routes(cfg.Server.BasePath)

	for i, rt := range routes {
		prefix := "├── "
		if i == len(routes)-1 {
			prefix = "└── "
		}

		fmt.Fprintln(w, prefix+methodStyle.Render(rt.Method)+" "+pathStyle.Render(rt.Pattern)+" "+opStyle.Render(string(rt.Operation)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, upstreamKey.Render("upstream: ")+cfg.Upstream.BaseURL)
}
