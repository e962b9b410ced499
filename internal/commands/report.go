package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"saldo/internal/export"
	"saldo/internal/services"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Report operations",
	}
	reportCmd.AddCommand(newReportExportCommand())
	return reportCmd
}

func newReportExportCommand() *cobra.Command {
	var (
		userID  string
		typ     string
		from    string
		to      string
		groupBy string
		out     string
		upload  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's report as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := time.Parse(time.DateOnly, from)
			if err != nil {
				return fmt.Errorf("invalid --from %q: expected YYYY-MM-DD", from)
			}
			end, err := time.Parse(time.DateOnly, to)
			if err != nil {
				return fmt.Errorf("invalid --to %q: expected YYYY-MM-DD", to)
			}

			cfg, manager, err := openDatabase()
			if err != nil {
				return err
			}
			defer manager.Close()

			report, err := services.NewReportService(manager.DB()).GenerateReport(cmd.Context(), userID, services.ReportRequest{
				Type:      services.ReportType(typ),
				StartDate: start,
				EndDate:   end,
				GroupBy:   services.ReportGroupBy(groupBy),
			})
			if err != nil {
				return fmt.Errorf("generating report: %w", err)
			}

			if upload {
				if cfg.ReportBucket == "" {
					return fmt.Errorf("--upload requires REPORT_BUCKET")
				}
				uploader, err := export.NewGCSUploader(cmd.Context(), cfg.ReportBucket)
				if err != nil {
					return err
				}
				defer uploader.Close()
				uri, err := export.NewExporter(uploader).Upload(cmd.Context(), userID, report)
				if err != nil {
					return fmt.Errorf("uploading report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), uri)
				return nil
			}

			if out == "" || out == "-" {
				return export.WriteReport(cmd.OutOrStdout(), report)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := export.WriteReport(f, report); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&typ, "type", string(services.ReportTypeAll), "income, expense or all")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&groupBy, "group-by", string(services.GroupByCategory), "category, date or account")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "store the CSV in REPORT_BUCKET instead")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
