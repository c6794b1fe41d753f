// Package httpapi exposes the pipeline and the invoice lifecycle over a
// JSON HTTP surface.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"invoice-pipeline/internal/common"
	"invoice-pipeline/internal/logging"
	"invoice-pipeline/internal/server/ingest"
	"invoice-pipeline/internal/server/models"
	"invoice-pipeline/internal/server/services"
)

// EventProcessor runs upload events through the ingestion pipeline.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, ev ingest.Event) ingest.BatchResult
}

// InvoiceOps is the slice of the invoice service the handlers need.
type InvoiceOps interface {
	CreateManual(ctx context.Context, p services.ManualInvoiceParams) (*models.InvoiceRecord, error)
	ImportRows(ctx context.Context, rows []services.ImportRow, sourceFile, actor string) (int, error)
	Delete(ctx context.Context, id int64, reason, actor string) error
	Restore(ctx context.Context, id int64, actor string) error
	List(ctx context.Context, limit int, includeDeleted bool) ([]*models.InvoiceRecord, error)
	ListBySource(ctx context.Context, source models.SourceType, limit int) ([]*models.InvoiceRecord, error)
}

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	pipeline EventProcessor
	invoices InvoiceOps
	logger   logging.Logger
}

func NewHandler(pipeline EventProcessor, invoices InvoiceOps, logger logging.Logger) *Handler {
	return &Handler{pipeline: pipeline, invoices: invoices, logger: logger}
}

// ProcessEvent accepts a batch of upload records and runs each through the
// pipeline. The response is always 200 with a per-record breakdown; only an
// unreadable or empty payload is rejected outright.
func (h *Handler) ProcessEvent(c *gin.Context) {
	var ev ingest.Event
	if err := c.BindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if len(ev.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No records found in event"})
		return
	}

	c.JSON(http.StatusOK, h.pipeline.ProcessEvent(c.Request.Context(), ev))
}

// ListInvoices returns recent invoices, newest first. Query parameters:
// limit, include_deleted, source.
func (h *Handler) ListInvoices(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	includeDeleted, _ := strconv.ParseBool(c.DefaultQuery("include_deleted", "false"))

	var items []*models.InvoiceRecord
	if source := c.Query("source"); source != "" {
		items, err = h.invoices.ListBySource(c.Request.Context(), models.SourceType(source), limit)
	} else {
		items, err = h.invoices.List(c.Request.Context(), limit, includeDeleted)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []*models.InvoiceRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

type createInvoicePayload struct {
	InvoiceNumber   string          `json:"invoice_number"`
	VendorName      string          `json:"vendor_name"`
	InvoiceDate     string          `json:"invoice_date"` // "YYYY-MM-DD", optional
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	CreatedBy       string          `json:"created_by"`
	Notes           string          `json:"notes"`
	TransactionType string          `json:"transaction_type"`
}

// CreateInvoice stores a hand-entered invoice.
func (h *Handler) CreateInvoice(c *gin.Context) {
	var payload createInvoicePayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var date time.Time
	if payload.InvoiceDate != "" {
		var err error
		date, err = time.Parse("2006-01-02", payload.InvoiceDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice date format, expected YYYY-MM-DD"})
			return
		}
	}

	rec, err := h.invoices.CreateManual(c.Request.Context(), services.ManualInvoiceParams{
		InvoiceNumber:   payload.InvoiceNumber,
		VendorName:      payload.VendorName,
		InvoiceDate:     date,
		Amount:          payload.Amount,
		Category:        payload.Category,
		CreatedBy:       payload.CreatedBy,
		Notes:           payload.Notes,
		TransactionType: payload.TransactionType,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "invoice created", "invoice": rec})
}

// ImportInvoices accepts an .xlsx upload (multipart field "file") and
// persists its rows as one atomic batch.
func (h *Handler) ImportInvoices(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	rows, err := services.ParseExcelRows(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.PostForm("actor")
	if actor == "" {
		actor = "importer"
	}

	n, err := h.invoices.ImportRows(c.Request.Context(), rows, header.Filename, actor)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": header.Filename, "invoicesAdded": n})
}

type deletePayload struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// DeleteInvoice soft-deletes an invoice; the row stays recoverable.
func (h *Handler) DeleteInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	var payload deletePayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), id, payload.Reason, payload.Actor); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invoice deleted", "id": id})
}

type restorePayload struct {
	Actor string `json:"actor"`
}

// RestoreInvoice reverses a soft delete.
func (h *Handler) RestoreInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	var payload restorePayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.invoices.Restore(c.Request.Context(), id, payload.Actor); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invoice restored", "id": id})
}

// fail translates domain errors to status codes. Anything unexpected is a
// plain 500 without internal detail.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrAlreadyDeleted), errors.Is(err, common.ErrNotDeleted), errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrEmptyReason), errors.Is(err, common.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
