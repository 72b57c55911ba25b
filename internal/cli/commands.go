package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// EnvServerURL overrides the default --server value.
const EnvServerURL = "COMPLIANCE_API_URL"

const defaultServerURL = "http://localhost:8000"

// globals holds the persistent flags.
type globals struct {
	serverURL  string
	outputJSON bool
}

func (g *globals) client() *Client { return NewClient(g.serverURL) }

// NewRootCommand builds the compliancectl command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "compliancectl",
		Short: "CLI for the compliance reporting API",
		Long: `compliancectl is a command-line interface for the compliance reporting API.

It lists audited projects, their executions, per-test results and score history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serverURL := os.Getenv(EnvServerURL)
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	root.PersistentFlags().StringVarP(&g.serverURL, "server", "s", serverURL, "API server URL")
	root.PersistentFlags().BoolVarP(&g.outputJSON, "json", "j", false, "Output in JSON format")

	root.AddCommand(newHealthCmd(g), newProjectsCmd(g), newExecutionsCmd(g))
	return root
}

func newHealthCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := g.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.outputJSON {
				return FormatJSON(out, data)
			}
			fmt.Fprintf(out, "Status: %s\n", data.Status)
			fmt.Fprintf(out, "Service: %s\n", data.Service)
			return nil
		},
	}
}

func newProjectsCmd(g *globals) *cobra.Command {
	projects := &cobra.Command{
		Use:   "projects",
		Short: "Query audited projects",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects with their latest score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := g.client().Projects(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g, data, FormatProjectsTable)
		},
	}

	get := &cobra.Command{
		Use:   "get [project-id]",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := g.client().Project(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g, data, FormatProjectDetail)
		},
	}

	history := &cobra.Command{
		Use:   "history [project-id]",
		Short: "Show score history per runner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			data, err := g.client().ProjectHistory(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g, data, FormatHistoryTable)
		},
	}
	history.Flags().IntP("limit", "l", 0, "Number of entries (server default 30, max 100)")

	trend := &cobra.Command{
		Use:   "trend [project-id]",
		Short: "Show the score trend per runner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			data, err := g.client().ProjectTrend(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g, data, FormatTrendTable)
		},
	}
	trend.Flags().IntP("limit", "l", 0, "History entries to consider (server default 30, max 100)")

	projects.AddCommand(list, get, history, trend)
	return projects
}

func newExecutionsCmd(g *globals) *cobra.Command {
	executions := &cobra.Command{
		Use:   "executions",
		Short: "Query audit executions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List executions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			raw, _ := cmd.Flags().GetString("project")
			var projectID *uuid.UUID
			if raw != "" {
				id, err := parseID(raw)
				if err != nil {
					return err
				}
				projectID = &id
			}
			data, err := g.client().Executions(cmd.Context(), projectID, limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g, data, FormatExecutionsTable)
		},
	}
	list.Flags().StringP("project", "p", "", "Only executions of this project ID")
	list.Flags().IntP("limit", "l", 0, "Number of executions (server default 20, max 100)")

	get := &cobra.Command{
		Use:   "get [execution-id]",
		Short: "Show one execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := g.client().Execution(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g, data, FormatExecutionDetail)
		},
	}

	results := &cobra.Command{
		Use:   "results [execution-id]",
		Short: "Show per-test results of an execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := g.client().Results(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g, data, FormatResultsTable)
		},
	}

	executions.AddCommand(list, get, results)
	return executions
}

// render writes data as JSON or through the table formatter.
func render[T any](out io.Writer, g *globals, data T, table func(io.Writer, T) error) error {
	if g.outputJSON {
		return FormatJSON(out, data)
	}
	return table(out, data)
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: must be a UUID", raw)
	}
	return id, nil
}
