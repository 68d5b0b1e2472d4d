package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/store"
	"go-pos-ws/pkg/format"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	cashFrom     string
	cashTo       string
	cashCategory string
	cashDate     string
)

// posctl cash
var cashCmd = &cobra.Command{
	Use:   "cash",
	Short: "Show the cash ledger and its balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := parsePeriod(cashFrom, cashTo)
		if err != nil {
			return err
		}
		cash := store.NewCash(newClient())
		if err := cash.Fetch(cmd.Context(), period); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
		for _, m := range cash.Movements() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				format.ShortDate(m.MovementDate.String()), m.Type, format.Currency(m.Signed(), currency()), m.Category, m.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nBalance: %s\n", format.Currency(cash.Balance(), currency()))
		return nil
	},
}

// posctl cash add <income|expense> <amount> <description...>
var cashAddCmd = &cobra.Command{
	Use:   "add <income|expense> <amount> <description...>",
	Short: "Record a manual income or expense",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := model.MovementType(args[0])
		if kind != model.MovementIncome && kind != model.MovementExpense {
			return fmt.Errorf("type must be income or expense, got %q", args[0])
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		req := service.MovementRequest{
			Type:        kind,
			Amount:      amount,
			Description: strings.Join(args[2:], " "),
			Category:    cashCategory,
		}
		if cashDate != "" {
			if req.MovementDate, err = model.ParseDate(cashDate); err != nil {
				return err
			}
		}

		m, err := store.NewCash(newClient()).Add(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %s %s on %s\n", m.Type, format.Currency(m.Amount, currency()), format.Date(m.MovementDate.String()))
		return nil
	},
}

// parsePeriod validates optional YYYY-MM-DD bounds.
func parsePeriod(from, to string) (repository.Period, error) {
	var p repository.Period
	var err error
	if from != "" {
		if p.From, err = model.ParseDate(from); err != nil {
			return p, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if to != "" {
		if p.To, err = model.ParseDate(to); err != nil {
			return p, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if p.From != "" && p.To != "" && p.From > p.To {
		return p, fmt.Errorf("--from %s is after --to %s", p.From, p.To)
	}
	return p, nil
}

func init() {
	cashCmd.Flags().StringVar(&cashFrom, "from", "", "first day, YYYY-MM-DD")
	cashCmd.Flags().StringVar(&cashTo, "to", "", "last day, YYYY-MM-DD")

	cashAddCmd.Flags().StringVar(&cashCategory, "category", "", "movement category")
	cashAddCmd.Flags().StringVar(&cashDate, "date", "", "movement day, defaults to today")
	cashCmd.AddCommand(cashAddCmd)
}
