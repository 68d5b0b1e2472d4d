package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"go-pos-ws/internal/calc"
	"go-pos-ws/internal/store"
	"go-pos-ws/pkg/format"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	stockLowOnly bool
	restockCost  string
)

// posctl stock
var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "List products with stock level and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		inv := store.NewInventory(newClient(), nil)
		if err := inv.Fetch(cmd.Context()); err != nil {
			return err
		}
		products := inv.Products()
		if stockLowOnly {
			products = inv.LowStock()
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTOCK\tMIN\tPRICE\tSTATUS")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
				p.ID, p.Name, p.Stock, p.MinStock, format.Currency(p.SalePrice, currency()), calc.Status(p.Stock, p.MinStock))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nInventory value: %s\n", format.Currency(inv.Value(), currency()))
		return nil
	},
}

// posctl restock <product-id> <quantity>
var restockCmd = &cobra.Command{
	Use:   "restock <product-id> <quantity>",
	Short: "Add purchased units and record the purchase as a cash outflow",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		var qty int
		if _, err := fmt.Sscanf(args[1], "%d", &qty); err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		var unitCost *decimal.Decimal
		if restockCost != "" {
			c, err := decimal.NewFromString(restockCost)
			if err != nil {
				return fmt.Errorf("invalid cost %q", restockCost)
			}
			unitCost = &c
		}

		inv := store.NewInventory(newClient(), nil)
		res, err := inv.Restock(cmd.Context(), id, qty, unitCost)
		if err != nil {
			return err
		}
		fmt.Printf("%s: stock now %d\n", res.Product.Name, res.Product.Stock)
		if res.Movement != nil {
			fmt.Printf("Recorded outflow %s\n", format.Currency(res.Movement.Amount, currency()))
		}
		for _, w := range res.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	stockCmd.Flags().BoolVar(&stockLowOnly, "low", false, "only products at or under their minimum")
	restockCmd.Flags().StringVar(&restockCost, "cost", "", "unit cost, defaults to the product's cost price")
}
