package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/httpx"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/services"
)

// AmountGate decides whether the caller may see monetary fields.
type AmountGate interface {
	CanViewAmounts(ctx context.Context) bool
}

// AnalyticsHandler serves the dashboard aggregations.
type AnalyticsHandler struct {
	svc  *services.AnalyticsService
	gate AmountGate
}

func NewAnalyticsHandler(svc *services.AnalyticsService, gate AmountGate) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, gate: gate}
}

// serverError logs err and answers 500 with a short message.
func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "path", r.URL.Path, "error", err)
	httpx.JSONError(w, http.StatusInternalServerError, msg, nil)
}

// GET /stats
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		serverError(w, r, "Failed to compute stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.Project(h.gate.CanViewAmounts(r.Context()), stats))
}

// GET /invoice-trends
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Trends(r.Context())
	if err != nil {
		serverError(w, r, "Failed to load trends", err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ProjectAll(h.gate.CanViewAmounts(r.Context()), rows))
}

// GET /vendors/top10
func (h *AnalyticsHandler) TopVendors(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.TopVendors(r.Context())
	if err != nil {
		serverError(w, r, "Failed to load top vendors", err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ProjectAll(h.gate.CanViewAmounts(r.Context()), rows))
}

// GET /category-spend
func (h *AnalyticsHandler) CategorySpend(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.CategorySpend(r.Context())
	if err != nil {
		serverError(w, r, "Failed to load category spend", err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ProjectAll(h.gate.CanViewAmounts(r.Context()), rows))
}

// GET /cash-outflow?start=&end=&bucket=
func (h *AnalyticsHandler) CashOutflow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := h.svc.Now()

	start, err := parseDateParam(q.Get("start"), now)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"start": err.Error()})
		return
	}
	end, err := parseDateParam(q.Get("end"), now.AddDate(0, 0, 90))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"end": err.Error()})
		return
	}

	visible := h.gate.CanViewAmounts(r.Context())
	if bucket := q.Get("bucket"); bucket == "" || bucket == "1" {
		rows, err := h.svc.CashOutflowBuckets(r.Context(), start, end)
		if err != nil {
			serverError(w, r, "Failed to load cash outflow forecast", err)
			return
		}
		httpx.JSON(w, http.StatusOK, services.ProjectAll(visible, rows))
		return
	}

	rows, err := h.svc.CashOutflowDaily(r.Context(), start, end)
	if err != nil {
		serverError(w, r, "Failed to load cash outflow forecast", err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ProjectAll(visible, rows))
}

// parseDateParam accepts YYYY-MM-DD (midnight in fallback's location) or
// RFC 3339. An empty value yields fallback.
func parseDateParam(v string, fallback time.Time) (time.Time, error) {
	if v == "" {
		return fallback, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, fallback.Location()); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

// GET /invoices?q=&page=&pageSize=&sort=
func (h *AnalyticsHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.ListInvoices(r.Context(), services.InvoiceQuery{
		Search:   q.Get("q"),
		Page:     intParam(q.Get("page"), services.DefaultPage),
		PageSize: intParam(q.Get("pageSize"), services.DefaultPageSize),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		serverError(w, r, "Failed to load invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.Project(h.gate.CanViewAmounts(r.Context()), page))
}

// intParam parses v, falling back to def when empty or not a number.
func intParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
