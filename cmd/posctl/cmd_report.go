package main

import (
	"fmt"
	"os"

	"go-pos-ws/internal/service"
	"go-pos-ws/pkg/format"

	"github.com/spf13/cobra"
)

var (
	reportPeriod string
	reportFrom   string
	reportTo     string
	reportCSV    string
)

// posctl report
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize sales for the last 7 or 30 days or a custom range",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := service.ReportQuery{Period: reportPeriod}
		if reportPeriod == "custom" {
			period, err := parsePeriod(reportFrom, reportTo)
			if err != nil {
				return err
			}
			q.From, q.To = period.From, period.To
		}
		client := newClient()

		if reportCSV != "" {
			data, err := client.ExportCSV(cmd.Context(), q)
			if err != nil {
				return err
			}
			if err := os.WriteFile(reportCSV, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", reportCSV)
			return nil
		}

		sum, err := client.Report(cmd.Context(), q)
		if err != nil {
			return err
		}
		fmt.Printf("%s to %s (%d sales)\n", format.Date(sum.From.String()), format.Date(sum.To.String()), len(sum.Sales))
		fmt.Printf("Revenue: %s\n", format.Currency(sum.TotalRevenue, currency()))
		fmt.Printf("Cost:    %s\n", format.Currency(sum.TotalCost, currency()))
		fmt.Printf("Profit:  %s (%s%%)\n", format.Currency(sum.TotalProfit, currency()), sum.MarginPct.StringFixed(1))
		for _, p := range sum.Series {
			fmt.Printf("  %-8s %s\n", p.Label, format.Currency(p.Revenue, currency()))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPeriod, "period", "7", "7, 30 or custom")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first day for --period custom")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last day for --period custom")
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "write the sales as CSV to this file instead")
}

