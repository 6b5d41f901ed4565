package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	pkgerrors "github.com/pkg/errors"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/promotions"
	"sales-dashboard/internal/services"
)

// dashboardSignals mirrors the signals the page declares: the global filters
// plus the promotion form.
type dashboardSignals struct {
	selection
	PromoName      string `json:"promoName"`
	PromoStartDate string `json:"promoStartDate"`
	PromoEndDate   string `json:"promoEndDate"`
	PromoTarget    string `json:"promoTarget"`
	PromoChannel   string `json:"promoChannel"`
}

func (s dashboardSignals) promotionRequest() models.PromotionRequest {
	return models.PromotionRequest{
		Name:      s.PromoName,
		StartDate: s.PromoStartDate,
		EndDate:   s.PromoEndDate,
		Target:    s.PromoTarget,
		Channel:   s.PromoChannel,
	}
}

type SSEHandlers struct {
	analytics  *services.Analytics
	promotions *promotions.Store
	logger     *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, promotions *promotions.Store, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics:  analytics,
		promotions: promotions,
		logger:     logger,
	}
}

// stream reads the filter signals, opens the event stream and runs fn with
// the validated query. Invalid filters are reported in the page instead.
func (h *SSEHandlers) stream(w http.ResponseWriter, r *http.Request, fn func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error) {
	log := observability.Logger(r.Context(), h.logger)

	var signals dashboardSignals
	readErr := datastar.ReadSignals(r, &signals)

	sse := datastar.NewSSE(w, r)
	defer flush(w)

	if readErr != nil {
		log.Warn("read datastar signals", "error", readErr)
		h.patchFilterError(sse, "Could not read the dashboard filters")
		return
	}

	q, err := signals.query(h.analytics.Catalog())
	if err != nil {
		h.patchFilterError(sse, userMessage(err))
		return
	}
	h.patchFilterError(sse, "")

	if err := fn(sse, q); err != nil {
		log.Error("sse update failed", "path", r.URL.Path, "error", err)
	}
}

func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error {
		return h.patchOverview(sse, h.analytics.Overview(q.Filter))
	})
}

func (h *SSEHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error {
		return h.patchProducts(sse, h.analytics.Products(q.Filter, q.Product))
	})
}

func (h *SSEHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error {
		return patchSignals(sse, map[string]any{"regions": h.analytics.Regions(q.Filter)})
	})
}

func (h *SSEHandlers) HandleEngagement(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error {
		return h.patchEngagement(sse, h.analytics.Engagement(q.Filter, q.Segment))
	})
}

func (h *SSEHandlers) HandlePromotions(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error {
		return h.patchPromotions(sse, h.analytics.Promotions(q.Filter))
	})
}

func (h *SSEHandlers) HandleLogs(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error {
		return h.patchLogs(sse, h.analytics.Logs(q.Filter, q.Offset, q.Limit))
	})
}

func (h *SSEHandlers) HandleSalespeople(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error {
		return h.patchSalespeople(sse, h.analytics.Salespeople(q.Filter))
	})
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(sse *datastar.ServerSentEventGenerator, q services.DashboardQuery) error {
		view, err := h.analytics.Dashboard(r.Context(), q)
		if err != nil {
			return err
		}

		for _, patch := range []func() error{
			func() error { return h.patchOverview(sse, view.Overview) },
			func() error { return h.patchProducts(sse, view.Products) },
			func() error { return patchSignals(sse, map[string]any{"regions": view.Regions}) },
			func() error { return h.patchEngagement(sse, view.Engagement) },
			func() error { return h.patchPromotions(sse, view.Promotions) },
			func() error { return h.patchLogs(sse, view.Logs) },
			func() error { return h.patchSalespeople(sse, view.Salespeople) },
		} {
			if err := patch(); err != nil {
				return err
			}
		}
		return nil
	})
}

// HandleAddPromotion submits the promotion form. Validation problems and name
// conflicts are shown next to the form.
func (h *SSEHandlers) HandleAddPromotion(w http.ResponseWriter, r *http.Request) {
	log := observability.Logger(r.Context(), h.logger)

	var signals dashboardSignals
	readErr := datastar.ReadSignals(r, &signals)

	sse := datastar.NewSSE(w, r)
	defer flush(w)

	if readErr != nil {
		log.Warn("read datastar signals", "error", readErr)
		h.patchPromoMessage(sse, message{Text: "Could not read the promotion form"})
		return
	}

	res, err := h.promotions.Add(signals.promotionRequest())
	switch {
	case pkgerrors.Is(err, promotions.ErrInvalidRequest):
		h.patchPromoMessage(sse, message{Text: err.Error()})
		return
	case err != nil:
		log.Error("add promotion", "error", err)
		h.patchPromoMessage(sse, message{Text: "Could not add the promotion"})
		return
	}

	h.patchPromoMessage(sse, message{OK: res.Added, Text: res.Message})
	if !res.Added {
		return
	}

	log.Info("promotion added", "name", res.Promotion.Name, "channel", res.Promotion.Channel)
	if err := patchSignals(sse, map[string]any{"promoName": ""}); err != nil {
		log.Error("reset promotion form", "error", err)
	}

	q, err := signals.query(h.analytics.Catalog())
	if err != nil {
		q = services.DashboardQuery{}
	}
	if err := h.patchPromotions(sse, h.analytics.Promotions(q.Filter)); err != nil {
		log.Error("patch promotions", "error", err)
	}
}

func (h *SSEHandlers) patchOverview(sse *datastar.ServerSentEventGenerator, view models.OverviewView) error {
	if err := patchSignals(sse, map[string]any{"overview": view}); err != nil {
		return err
	}
	return patchFragment(sse, overviewTemplate, view)
}

func (h *SSEHandlers) patchProducts(sse *datastar.ServerSentEventGenerator, view models.ProductsView) error {
	if err := patchSignals(sse, map[string]any{"products": view}); err != nil {
		return err
	}
	return patchFragment(sse, productsTemplate, view)
}

func (h *SSEHandlers) patchEngagement(sse *datastar.ServerSentEventGenerator, view models.EngagementView) error {
	if err := patchSignals(sse, map[string]any{"engagement": view}); err != nil {
		return err
	}
	return patchFragment(sse, engagementTemplate, view)
}

func (h *SSEHandlers) patchPromotions(sse *datastar.ServerSentEventGenerator, view models.PromotionsView) error {
	if err := patchSignals(sse, map[string]any{"promotions": view}); err != nil {
		return err
	}
	if err := patchFragment(sse, promotionsTemplate, view); err != nil {
		return err
	}
	return patchFragment(sse, promotionTableTemplate, view.Promotions)
}

func (h *SSEHandlers) patchLogs(sse *datastar.ServerSentEventGenerator, page models.LogPage) error {
	if err := patchSignals(sse, map[string]any{"logTotal": page.Total}); err != nil {
		return err
	}
	return patchFragment(sse, logsTemplate, page)
}

func (h *SSEHandlers) patchSalespeople(sse *datastar.ServerSentEventGenerator, view models.SalespeopleView) error {
	if err := patchSignals(sse, map[string]any{"salespeople": view}); err != nil {
		return err
	}
	return patchFragment(sse, salespeopleTemplate, view)
}

func (h *SSEHandlers) patchFilterError(sse *datastar.ServerSentEventGenerator, text string) {
	if err := patchFragment(sse, filterErrorTemplate, text); err != nil {
		h.logger.Error("patch filter error", "error", err)
	}
}

func (h *SSEHandlers) patchPromoMessage(sse *datastar.ServerSentEventGenerator, msg message) {
	if err := patchFragment(sse, promoMessageTemplate, msg); err != nil {
		h.logger.Error("patch promotion message", "error", err)
	}
}

func patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal signals")
	}
	return sse.PatchSignals(data)
}

func patchFragment(sse *datastar.ServerSentEventGenerator, t *template.Template, data any) error {
	html, err := render(t, data)
	if err != nil {
		return pkgerrors.Wrapf(err, "render %s", t.Name())
	}
	return sse.PatchElements(html)
}

func userMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message
	}
	return "Invalid dashboard filters"
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
