package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/medmuse/medmuse-backend/pkg/client"
)

const cliDateLayout = "2006-01-02"

// NewReportCmd creates the report command group.
func NewReportCmd(opts *RootOptions) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate, inspect, and download health reports",
	}

	var (
		startDate  string
		endDate    string
		page       int
		pageSize   int
		outputPath string
	)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report from tracked symptoms",
		Long:  "Generate a report for the trailing week, or for an explicit period\nwhen both --start and --end are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}

			var rpt *client.Report
			switch {
			case startDate == "" && endDate == "":
				rpt, err = c.GenerateWeekly(cmd.Context())
			case startDate != "" && endDate != "":
				var start, end time.Time
				if start, err = time.ParseInLocation(cliDateLayout, startDate, time.UTC); err != nil {
					return fmt.Errorf("--start must be YYYY-MM-DD: %w", err)
				}
				if end, err = time.ParseInLocation(cliDateLayout, endDate, time.UTC); err != nil {
					return fmt.Errorf("--end must be YYYY-MM-DD: %w", err)
				}
				rpt, err = c.GenerateForPeriod(cmd.Context(), start, end)
			default:
				return fmt.Errorf("--start and --end must be given together")
			}
			if err != nil {
				return err
			}
			return printReport(cmd, opts, rpt)
		},
	}
	generateCmd.Flags().StringVar(&startDate, "start", "", "period start (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&endDate, "end", "", "period end (YYYY-MM-DD)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			result, err := c.ListReports(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}
			if opts.JSONOutput {
				return printJSON(cmd, result)
			}
			for _, rpt := range result.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s - %s\t%s\t%s\n",
					rpt.ID,
					rpt.PeriodStart.Format(cliDateLayout),
					rpt.PeriodEnd.Format(cliDateLayout),
					rpt.Provider,
					truncate(rpt.HealthSummary, 60),
				)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d total\n", result.Page, result.TotalItems)
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 0, "page number (zero-based)")
	listCmd.Flags().IntVar(&pageSize, "page-size", 20, "reports per page")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReportID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			rpt, err := c.GetReport(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printReport(cmd, opts, rpt)
		},
	}

	downloadCmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the rendered PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReportID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			doc, err := c.DownloadPDF(cmd.Context(), id)
			if err != nil {
				return err
			}

			path := outputPath
			if path == "" {
				path = doc.Filename
			}
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(doc.Data))
			return nil
		},
	}
	downloadCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: server-provided filename)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report and its artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReportID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			if err := c.DeleteReport(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted report %d\n", id)
			return nil
		},
	}

	reportCmd.AddCommand(generateCmd, listCmd, getCmd, downloadCmd, deleteCmd)
	return reportCmd
}

func parseReportID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("report id must be a positive integer, got %q", raw)
	}
	return id, nil
}

func printReport(cmd *cobra.Command, opts *RootOptions, rpt *client.Report) error {
	if opts.JSONOutput {
		return printJSON(cmd, rpt)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report #%d (%s - %s, provider: %s)\n",
		rpt.ID,
		rpt.PeriodStart.Format(cliDateLayout),
		rpt.PeriodEnd.Format(cliDateLayout),
		rpt.Provider,
	)
	fmt.Fprintf(out, "Generated: %s\n\n", rpt.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintln(out, rpt.HealthSummary)
	if rpt.RiskAreas != "" {
		fmt.Fprintf(out, "\nAreas of attention:\n%s\n", rpt.RiskAreas)
	}
	if rpt.Recommendations != "" {
		fmt.Fprintf(out, "\nRecommendations:\n%s\n", rpt.Recommendations)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
