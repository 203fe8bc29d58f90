package billing

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bahikhata-erp/bahikhata/internal/inventory"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/parties"
	"github.com/bahikhata-erp/bahikhata/internal/platform/httpx"
	"github.com/bahikhata-erp/bahikhata/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler exposes the bill lifecycle over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type cartLinePayload struct {
	StockID int64   `json:"stock_id" validate:"required"`
	Item    string  `json:"item"`
	Batch   string  `json:"batch"`
	Qty     float64 `json:"qty" validate:"required,gt=0"`
	Rate    float64 `json:"rate" validate:"gte=0"`
	GSTRate float64 `json:"grate" validate:"gte=0"`
	Disc    float64 `json:"disc" validate:"gte=0,lte=100"`
	HSN     string  `json:"hsn"`
	UOM     string  `json:"uom"`
}

type chargePayload struct {
	Type    string  `json:"type" validate:"required"`
	Amount  float64 `json:"amount" validate:"gte=0"`
	GSTRate float64 `json:"gst_rate" validate:"gte=0"`
}

type billPayload struct {
	BillNo        string            `json:"bill_no"`
	BillDate      string            `json:"bill_date" validate:"required"`
	BillType      string            `json:"bill_type" validate:"required"`
	PartyID       int64             `json:"party_id" validate:"required"`
	ReferenceNo   string            `json:"reference_no"`
	ReverseCharge bool              `json:"reverse_charge"`
	Narration     string            `json:"narration"`
	Cart          []cartLinePayload `json:"cart" validate:"required,min=1,dive"`
	OtherCharges  []chargePayload   `json:"other_charges" validate:"dive"`
}

func (p billPayload) toRequest() (BillRequest, error) {
	date, err := time.Parse(dateLayout, p.BillDate)
	if err != nil {
		return BillRequest{}, err
	}
	req := BillRequest{
		Kind:          VoucherKind(p.BillType),
		DocumentNo:    p.BillNo,
		DocumentDate:  date,
		PartyID:       p.PartyID,
		ReferenceNo:   p.ReferenceNo,
		Narration:     p.Narration,
		ReverseCharge: p.ReverseCharge,
	}
	for _, line := range p.Cart {
		req.Cart = append(req.Cart, CartLine{
			StockID:     line.StockID,
			Item:        line.Item,
			Batch:       line.Batch,
			Qty:         line.Qty,
			Rate:        line.Rate,
			GSTRate:     line.GSTRate,
			DiscountPct: line.Disc,
			HSN:         line.HSN,
			UOM:         line.UOM,
		})
	}
	for _, charge := range p.OtherCharges {
		req.OtherCharges = append(req.OtherCharges, ChargeInput{Type: charge.Type, Amount: charge.Amount, GSTRate: charge.GSTRate})
	}
	return req, nil
}

// MountRoutes attaches bill routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/cancel", h.Cancel)
	r.Delete("/{id}", h.Delete)
}

var errorMappings = []httpx.ErrorMapping{
	{Err: ErrBillNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Err: ErrFirmNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Err: parties.ErrPartyNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Err: inventory.ErrStockNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Err: inventory.ErrBatchNotFound, Status: http.StatusConflict, Title: "Batch Not Found"},
	{Err: inventory.ErrInsufficientStock, Status: http.StatusConflict, Title: "Insufficient Stock"},
	{Err: inventory.ErrInvalidQuantity, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: ErrDuplicateDocumentNo, Status: http.StatusConflict, Title: "Duplicate Document Number"},
	{Err: ErrSequenceExhausted, Status: http.StatusConflict, Title: "Sequence Exhausted"},
	{Err: ErrUnbalancedPosting, Status: http.StatusConflict, Title: "Unbalanced Posting"},
	{Err: ErrBillNotActive, Status: http.StatusConflict, Title: "Bill Not Active"},
	{Err: ErrDocumentNoImmutable, Status: http.StatusForbidden, Title: "Document Number Immutable"},
	{Err: ErrEmptyCart, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: ErrDocumentNoTooLong, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: ErrUnknownVoucherKind, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: shared.ErrInvalidFinancialYear, Status: http.StatusBadRequest, Title: "Validation Failed"},
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondMapped(w, err, errorMappings)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (shared.Actor, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing actor")
	}
	return actor, ok
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (BillRequest, bool) {
	var payload billPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return BillRequest{}, false
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return BillRequest{}, false
	}
	req, err := payload.toRequest()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "bill_date must be YYYY-MM-DD")
		return BillRequest{}, false
	}
	return req, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	result, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.respondError(w, "create bill", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"bill_id":     result.BillID,
		"document_no": result.DocumentNo,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	req, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	result, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		h.respondError(w, "update bill", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"bill_id":     result.BillID,
		"document_no": result.DocumentNo,
	})
}

type cancelPayload struct {
	Reason string `json:"reason"`
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	var payload cancelPayload
	_ = httpx.DecodeJSON(r, &payload)
	if err := h.service.Cancel(r.Context(), actor, id, payload.Reason); err != nil {
		h.respondError(w, "cancel bill", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": string(StatusCancelled)})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	var payload cancelPayload
	_ = httpx.DecodeJSON(r, &payload)
	if err := h.service.Delete(r.Context(), actor, id, payload.Reason); err != nil {
		h.respondError(w, "delete bill", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": string(StatusDeleted)})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	bill, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, "get bill", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBillView(bill))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	filter := ListFilter{
		Kind:   VoucherKind(r.URL.Query().Get("kind")),
		Status: BillStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			filter.From = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			filter.To = t
		}
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	bills, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		h.respondError(w, "list bills", err)
		return
	}
	views := make([]map[string]any, 0, len(bills))
	for _, b := range bills {
		views = append(views, billHeaderView(b))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bills": views})
}

func billHeaderView(b Bill) map[string]any {
	return map[string]any{
		"id":                b.ID,
		"document_no":       b.DocumentNo,
		"document_date":     b.DocumentDate.Format(dateLayout),
		"kind":              string(b.Kind),
		"party_id":          b.PartyID,
		"gross_total":       b.GrossTotal,
		"net_total":         b.NetTotal,
		"net_total_display": FormatAmount(b.NetTotal),
		"round_off":         b.RoundOff,
		"cgst":              b.CGST,
		"sgst":              b.SGST,
		"igst":              b.IGST,
		"reverse_charge":    b.ReverseCharge,
		"status":            string(b.Status),
	}
}

func toBillView(b BillWithDetails) map[string]any {
	view := billHeaderView(b.Bill)
	view["reference_no"] = b.ReferenceNo
	view["narration"] = b.Narration
	lines := make([]map[string]any, 0, len(b.Lines))
	for _, line := range b.Lines {
		lines = append(lines, map[string]any{
			"stock_id":   line.StockID,
			"item":       line.Item,
			"batch":      line.Batch.String(),
			"qty":        line.Qty,
			"rate":       line.Rate,
			"grate":      line.GSTRate,
			"disc":       line.DiscountPct,
			"taxable":    line.Taxable,
			"cgst":       line.CGST,
			"sgst":       line.SGST,
			"igst":       line.IGST,
			"line_total": line.LineTotal,
			"hsn":        line.HSN,
			"uom":        line.UOM,
		})
	}
	view["cart"] = lines
	ledger := make([]map[string]any, 0, len(b.Ledger))
	for _, e := range b.Ledger {
		ledger = append(ledger, map[string]any{
			"account_head": e.AccountHead,
			"account_type": string(e.AccountType),
			"debit":        e.Debit,
			"credit":       e.Credit,
			"date":         e.TransactionDate.Format(dateLayout),
		})
	}
	view["ledger"] = ledger
	return view
}
