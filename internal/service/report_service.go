package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/format"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Period7      = "7"
	Period30     = "30"
	PeriodCustom = "custom"

	// maxSeriesPoints caps the revenue series of a report.
	maxSeriesPoints = 14
)

var csvHeader = []string{"Fecha", "Tipo", "Productos", "Ingresos", "Costos", "Utilidad"}

type ReportQuery struct {
	Period string     `query:"period" validate:"omitempty,oneof=7 30 custom"`
	From   model.Date `query:"from" validate:"omitempty,isodate"`
	To     model.Date `query:"to" validate:"omitempty,isodate"`
}

// DayPoint is one bar of a daily revenue series.
type DayPoint struct {
	Date    model.Date      `json:"date"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ReportSummary struct {
	From         model.Date      `json:"from"`
	To           model.Date      `json:"to"`
	Sales        []model.Sale    `json:"sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	// MarginPct is profit over revenue in percent, 0 without revenue.
	MarginPct decimal.Decimal `json:"margin_pct"`
	Series    []DayPoint      `json:"series"`
}

// CSVRow is one parsed line of an exported report.
type CSVRow struct {
	Date     model.Date
	Type     string
	Products string
	Revenue  decimal.Decimal
	Cost     decimal.Decimal
	Profit   decimal.Decimal
}

type ReportService interface {
	Summary(ctx context.Context, workspaceID uuid.UUID, q *ReportQuery) (*ReportSummary, error)
	ExportFilename() string
}

type reportService struct {
	saleRepo repository.SaleRepository
	cal      Calendar
}

func NewReportService(sRepo repository.SaleRepository, cal Calendar) ReportService {
	return &reportService{saleRepo: sRepo, cal: cal}
}

func (s *reportService) Summary(ctx context.Context, workspaceID uuid.UUID, q *ReportQuery) (*ReportSummary, error) {
	if q.Period == "" {
		q.Period = Period7
	}
	if err := validate(q); err != nil {
		return nil, err
	}

	var period repository.Period
	points := maxSeriesPoints
	switch q.Period {
	case Period7:
		period = repository.Period{From: s.cal.DaysAgo(7), To: s.cal.Today()}
		points = 7
	case Period30:
		period = repository.Period{From: s.cal.DaysAgo(30), To: s.cal.Today()}
	default:
		if q.From != "" && q.To != "" && q.From > q.To {
			return nil, invalid("from", "must not be after to")
		}
		period = repository.Period{From: q.From, To: q.To}
	}

	sales, err := s.saleRepo.FindByPeriod(ctx, workspaceID, period)
	if err != nil {
		return nil, err
	}
	if sales == nil {
		sales = []model.Sale{}
	}

	sum := &ReportSummary{
		From:         period.From,
		To:           period.To,
		Sales:        sales,
		TotalRevenue: decimal.Zero,
		TotalCost:    decimal.Zero,
		TotalProfit:  decimal.Zero,
		MarginPct:    decimal.Zero,
	}
	for _, sale := range sales {
		sum.TotalRevenue = sum.TotalRevenue.Add(sale.TotalRevenue)
		sum.TotalCost = sum.TotalCost.Add(sale.TotalCost)
		sum.TotalProfit = sum.TotalProfit.Add(sale.TotalProfit)
	}
	if sum.TotalRevenue.IsPositive() {
		sum.MarginPct = sum.TotalProfit.Div(sum.TotalRevenue).Mul(decimal.NewFromInt(100)).Round(1)
	}
	sum.Series = RevenueSeries(sales, s.cal, points)
	return sum, nil
}

func (s *reportService) ExportFilename() string {
	return ExportFilename(s.cal.Today())
}

// RevenueSeries sums revenue per day for the last n days ending today, oldest first.
func RevenueSeries(sales []model.Sale, cal Calendar, n int) []DayPoint {
	byDay := make(map[model.Date]decimal.Decimal, len(sales))
	for _, sale := range sales {
		byDay[sale.SaleDate] = byDay[sale.SaleDate].Add(sale.TotalRevenue)
	}
	points := make([]DayPoint, 0, n)
	for i := 0; i < n; i++ {
		d := cal.DaysAgo(n - 1 - i)
		points = append(points, DayPoint{
			Date:    d,
			Label:   format.ShortDate(string(d)),
			Revenue: byDay[d],
		})
	}
	return points
}

// ExportFilename is the download name of a report exported on today.
func ExportFilename(today model.Date) string {
	return fmt.Sprintf("reporte_%s.csv", today)
}

// WriteCSV writes sales as a report, header first. An empty list yields the
// header only.
func WriteCSV(w io.Writer, sales []model.Sale) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range sales {
		products := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			products = append(products, fmt.Sprintf("%s x%d", it.ProductName, it.Quantity))
		}
		record := []string{
			string(s.SaleDate),
			s.Type.Label(),
			strings.Join(products, " | "),
			s.TotalRevenue.StringFixed(2),
			s.TotalCost.StringFixed(2),
			s.TotalProfit.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseCSV reads a report produced by WriteCSV.
func ParseCSV(r io.Reader) ([]CSVRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("report: missing header")
	}
	rows := make([]CSVRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := CSVRow{Date: model.Date(rec[0]), Type: rec[1], Products: rec[2]}
		if row.Revenue, err = decimal.NewFromString(rec[3]); err != nil {
			return nil, fmt.Errorf("report line %d: revenue: %w", i+2, err)
		}
		if row.Cost, err = decimal.NewFromString(rec[4]); err != nil {
			return nil, fmt.Errorf("report line %d: cost: %w", i+2, err)
		}
		if row.Profit, err = decimal.NewFromString(rec[5]); err != nil {
			return nil, fmt.Errorf("report line %d: profit: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
