package handler

import (
	"bytes"

	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GET /api/v1/reports/summary?period=7|30|custom&from=&to=
func (h *ReportHandler) GetSummary(c *fiber.Ctx) error {
	var q service.ReportQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query"})
	}
	sum, err := h.service.Summary(c.UserContext(), workspaceID(c), &q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sum)
}

// ExportCSV downloads the sales of the same period as reporte_<today>.csv
// GET /api/v1/reports/export.csv
func (h *ReportHandler) ExportCSV(c *fiber.Ctx) error {
	var q service.ReportQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query"})
	}
	sum, err := h.service.Summary(c.UserContext(), workspaceID(c), &q)
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, sum.Sales); err != nil {
		return fail(c, err)
	}
	c.Attachment(h.service.ExportFilename())
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}
