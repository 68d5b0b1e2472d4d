package main

import (
	"fmt"
	"strconv"
	"strings"

	"go-pos-ws/internal/service"
	"go-pos-ws/pkg/format"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var sellNotes string

// posctl sell <product-id>:<qty>[@price] ...
var sellCmd = &cobra.Command{
	Use:   "sell <product-id>:<qty>[@price]...",
	Short: "Ring up a sale",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines := make([]service.CartLine, 0, len(args))
		for _, a := range args {
			line, err := parseCartLine(a)
			if err != nil {
				return err
			}
			lines = append(lines, line)
		}
		req := service.CheckoutRequest{Items: lines}
		if sellNotes != "" {
			req.Notes = &sellNotes
		}

		res, err := newClient().Checkout(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Sale %s: total %s, profit %s\n",
			res.Sale.ID, format.Currency(res.Sale.TotalRevenue, currency()), format.Currency(res.Sale.TotalProfit, currency()))
		for _, w := range res.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		return nil
	},
}

// parseCartLine reads "id:qty" or "id:qty@price".
func parseCartLine(s string) (service.CartLine, error) {
	var line service.CartLine
	idPart, rest, ok := strings.Cut(s, ":")
	if !ok {
		return line, fmt.Errorf("invalid item %q, expected <product-id>:<qty>[@price]", s)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return line, fmt.Errorf("invalid product id %q", idPart)
	}
	line.ProductID = id

	qtyPart, pricePart, hasPrice := strings.Cut(rest, "@")
	qty, err := strconv.Atoi(qtyPart)
	if err != nil || qty < 1 {
		return line, fmt.Errorf("invalid quantity %q", qtyPart)
	}
	line.Quantity = qty

	if hasPrice {
		price, err := decimal.NewFromString(pricePart)
		if err != nil || price.IsNegative() {
			return line, fmt.Errorf("invalid price %q", pricePart)
		}
		line.SalePrice = &price
	}
	return line, nil
}

func init() {
	sellCmd.Flags().StringVar(&sellNotes, "notes", "", "free-text note stored with the sale")
}
