package salesreporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the sales report endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/reports/sales", func(rr chi.Router) {
		rr.Get("/", h.handleView)
		rr.Post("/fetch", h.handleFetch)
		rr.Post("/sort", h.handleSort)
		rr.Post("/reset", h.handleReset)
		rr.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/export.csv", h.handleCSV)
			gr.Get("/export.xlsx", h.handleXLSX)
			gr.Get("/export.pdf", h.handlePDF)
		})
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if c, err := r.Cookie(BoardCookie); err == nil && c.Value != "" {
		return "board:" + c.Value, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
