package salesreporthttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/salesboard/internal/platform/httpx"
	"github.com/odyssey-erp/salesboard/internal/salesreport"
	"github.com/odyssey-erp/salesboard/internal/salesreport/export"
)

// BoardCookie names the cookie carrying the operator's board id.
const BoardCookie = "salesboard_id"

const (
	fetchTimeout  = 20 * time.Second
	exportTimeout = 30 * time.Second
)

// ReportService drives board refreshes.
type ReportService interface {
	Refresh(ctx context.Context, board *salesreport.Board, filter salesreport.Filter) error
}

// PDFService renders the board to PDF bytes.
type PDFService interface {
	RenderBoard(ctx context.Context, title string, view salesreport.BoardView) ([]byte, error)
}

// Handler serves the sales report board.
type Handler struct {
	logger   *slog.Logger
	service  ReportService
	registry *salesreport.Registry
	pdf      PDFService
	money    MoneyFormatter
	secure   bool
	bufPool  sync.Pool
	now      func() time.Time
}

// Options carries optional handler settings.
type Options struct {
	Money        MoneyFormatter
	SecureCookie bool
}

// NewHandler constructs the sales report HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService, registry *salesreport.Registry, pdf PDFService, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:   logger,
		service:  service,
		registry: registry,
		pdf:      pdf,
		money:    opts.Money,
		secure:   opts.SecureCookie,
		now:      time.Now,
	}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

type sortRequest struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	board, release := h.acquire(w, r)
	view := board.View()
	release()
	httpx.JSON(w, http.StatusOK, buildResponse(view, h.money))
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	board, release := h.acquire(w, r)
	err = h.service.Refresh(ctx, board, filter)
	view := board.View()
	release()

	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, buildResponse(view, h.money))
	case errors.Is(err, salesreport.ErrInvalidFilter):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	case errors.Is(err, context.DeadlineExceeded):
		h.logError("fetch report", err)
		httpx.RespondError(w, fmt.Errorf("%w: sales report request timed out", httpx.ErrUpstreamTimeout))
	default:
		h.logError("fetch report", err)
		httpx.RespondError(w, fmt.Errorf("%w: sales report could not be loaded", httpx.ErrUpstream))
	}
}

func (h *Handler) handleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	table := salesreport.Table(strings.TrimSpace(req.Table))
	if !table.Valid() {
		httpx.RespondError(w, fmt.Errorf("%w: unknown table %q", httpx.ErrValidation, req.Table))
		return
	}

	board, release := h.acquire(w, r)
	if !board.AcceptsColumn(table, req.Column) {
		release()
		httpx.RespondError(w, fmt.Errorf("%w: column %q is not sortable on %s", httpx.ErrValidation, req.Column, table))
		return
	}
	board.OnColumnActivate(table, req.Column)
	view := board.View()
	release()
	httpx.JSON(w, http.StatusOK, buildResponse(view, h.money))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	board, release := h.acquire(w, r)
	board.Reset()
	view := board.View()
	release()
	httpx.JSON(w, http.StatusOK, buildResponse(view, h.money))
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	board, release := h.acquire(w, r)
	view := board.View()
	release()

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()

	if err := export.WriteSummaryCSV(buf, view); err != nil {
		h.handleServerError(w, "write summary csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WritePivotCSV(buf, view); err != nil {
		h.handleServerError(w, "write pivot csv", err)
		return
	}
	h.attach(w, "text/csv; charset=utf-8", "csv", buf.Bytes())
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	board, release := h.acquire(w, r)
	view := board.View()
	release()

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()

	if err := export.WriteXLSX(buf, view); err != nil {
		h.handleServerError(w, "write xlsx", err)
		return
	}
	h.attach(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", buf.Bytes())
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.handleServerError(w, "pdf exporter", errors.New("pdf exporter not configured"))
		return
	}
	board, release := h.acquire(w, r)
	view := board.View()
	release()

	ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
	defer cancel()

	data, err := h.pdf.RenderBoard(ctx, "Sales Report "+h.now().Format(salesreport.DateLayout), view)
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}
	h.attach(w, "application/pdf", "pdf", data)
}

func (h *Handler) attach(w http.ResponseWriter, contentType, ext string, data []byte) {
	filename := fmt.Sprintf("sales-report-%s.%s", h.now().Format("20060102-150405"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(data); err != nil {
		h.logError("stream "+ext, err)
	}
}

// acquire resolves the caller's board, issuing a cookie for new boards.
func (h *Handler) acquire(w http.ResponseWriter, r *http.Request) (*salesreport.Board, func()) {
	var current string
	if c, err := r.Cookie(BoardCookie); err == nil {
		current = c.Value
	}
	id, board, release := h.registry.Acquire(current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     BoardCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return board, release
}

func (h *Handler) parseFilter(r *http.Request) (salesreport.Filter, error) {
	if err := r.ParseForm(); err != nil {
		return salesreport.Filter{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	today := h.now().UTC().Format(salesreport.DateLayout)
	from, err := parseDate(r.Form.Get("start_date"), today)
	if err != nil {
		return salesreport.Filter{}, fmt.Errorf("%w: start_date", httpx.ErrValidation)
	}
	to, err := parseDate(r.Form.Get("end_date"), from.Format(salesreport.DateLayout))
	if err != nil {
		return salesreport.Filter{}, fmt.Errorf("%w: end_date", httpx.ErrValidation)
	}
	return salesreport.Filter{
		From:      from,
		To:        to,
		OrderType: r.Form.Get("order_type"),
		Category:  r.Form.Get("category"),
	}, nil
}

func parseDate(value, fallback string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	return time.Parse(salesreport.DateLayout, value)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
