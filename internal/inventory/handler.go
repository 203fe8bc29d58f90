package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bahikhata-erp/bahikhata/internal/platform/httpx"
	"github.com/bahikhata-erp/bahikhata/internal/shared"
)

// Handler serves stock read views. Batch mutation happens only through the
// billing engine; there is no write endpoint here.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes attaches stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
}

type batchView struct {
	Batch  string  `json:"batch"`
	Qty    float64 `json:"qty"`
	Rate   float64 `json:"rate"`
	MRP    float64 `json:"mrp"`
	Expiry string  `json:"expiry,omitempty"`
}

type stockView struct {
	ID      int64       `json:"id"`
	Item    string      `json:"item"`
	HSN     string      `json:"hsn"`
	UOM     string      `json:"uom"`
	GSTRate float64     `json:"gst_rate"`
	Qty     float64     `json:"qty"`
	Batches []batchView `json:"batches,omitempty"`
}

func toStockView(s StockItem) stockView {
	view := stockView{
		ID:      s.ID,
		Item:    s.Item,
		HSN:     s.HSN,
		UOM:     s.UOM,
		GSTRate: s.GSTRate,
		Qty:     s.Qty,
	}
	for _, b := range s.Batches {
		bv := batchView{Batch: b.Key.String(), Qty: b.Qty, Rate: b.Rate, MRP: b.MRP}
		if b.Expiry != nil {
			bv.Expiry = b.Expiry.Format("2006-01-02")
		}
		view.Batches = append(view.Batches, bv)
	}
	return view
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing actor")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.repo.List(r.Context(), actor.FirmID, limit)
	if err != nil {
		h.logger.Error("list stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]stockView, 0, len(items))
	for _, s := range items {
		views = append(views, toStockView(s))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stock": views})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing actor")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid stock id")
		return
	}
	stock, err := h.repo.Get(r.Context(), actor.FirmID, id)
	if err != nil {
		if errors.Is(err, ErrStockNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStockView(stock))
}
