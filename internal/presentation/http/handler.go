package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appcart "github.com/Zhima-Mochi/garmentshop/internal/application/cart"
	"github.com/Zhima-Mochi/garmentshop/internal/application/checkout"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	domcart "github.com/Zhima-Mochi/garmentshop/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/garmentshop/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/garmentshop/internal/domain/order"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/observability/logctx"
)

const (
	componentHTTPHandler = "http_server"
	headerIdempotencyKey = "Idempotency-Key"
	maxBodyBytes         = 1 << 20
)

// Shop is the storefront boundary the handlers drive.
type Shop interface {
	Register(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (domacct.Session, error)
	ListGarments(ctx context.Context) ([]domcatalog.Garment, error)
	AddToCart(ctx context.Context, session domacct.Session, garmentID, size string) (string, error)
	CartSummary(ctx context.Context, session domacct.Session) (appcart.CartSummary, error)
	RemoveFromCart(ctx context.Context, session domacct.Session, entryID string) error
	BuyNow(ctx context.Context, cmd checkout.BuyNowCommand) (string, error)
	CheckoutCart(ctx context.Context, session domacct.Session, shipping domorder.Shipping) (*checkout.CheckoutResult, error)
	ListOrders(ctx context.Context, session domacct.Session) ([]domorder.Order, error)
}

// Tokens turns sessions into bearer tokens and back.
type Tokens interface {
	Issue(s domacct.Session) (string, time.Time, error)
	Parse(ctx context.Context, token string) (domacct.Session, error)
	Revoke(ctx context.Context, token string) error
}

// Options carries the optional operational endpoints.
type Options struct {
	// Health reports whether backing stores are reachable.
	Health func(ctx context.Context) error
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

type Handler struct {
	shop   Shop
	tokens Tokens
	opts   Options
	log    observability.Logger
	tel    observability.Observability
}

func NewHandler(shop Shop, tokens Tokens, tel observability.Observability, opts Options) *Handler {
	tel = observability.OrNop(tel)
	return &Handler{
		shop:   shop,
		tokens: tokens,
		opts:   opts,
		log:    tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:    tel,
	}
}

// Router wires Trace → request logger → metrics → access log → handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceMiddleware,
		ObservabilityMiddleware(h.log),
		MetricsMiddleware(h.tel.Metrics()),
		AccessLogMiddleware(h.log),
	)

	r.Get("/health", h.handleHealth)
	if h.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", h.handleRegister)
		r.Post("/sessions", h.handleLogin)
		r.Get("/garments", h.handleListGarments)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)
			r.Delete("/sessions", h.handleLogout)
			r.Get("/cart", h.handleListCart)
			r.Post("/cart", h.handleAddToCart)
			r.Delete("/cart/{entryID}", h.handleRemoveFromCart)
			r.Post("/cart/checkout", h.handleCheckoutCart)
			r.Get("/orders", h.handleListOrders)
			r.Post("/orders", h.handleBuyNow)
		})
	})
	return r
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.shop.Register(r.Context(), req.Username, req.Password); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	session, err := h.shop.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	token, expires, err := h.tokens.Issue(session)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, ExpiresAt: expires})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	if err := h.tokens.Revoke(r.Context(), token); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListGarments(w http.ResponseWriter, r *http.Request) {
	garments, err := h.shop.ListGarments(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]garmentResponse, 0, len(garments))
	for _, g := range garments {
		out = append(out, toGarmentResponse(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"garments": out})
}

type addToCartRequest struct {
	GarmentID string `json:"garment_id"`
	Size      string `json:"size"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entryID, err := h.shop.AddToCart(r.Context(), sessionFrom(r.Context()), req.GarmentID, req.Size)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"entry_id": entryID})
}

type cartResponse struct {
	Entries    []cartEntryResponse `json:"entries"`
	TotalCents int64               `json:"total_cents"`
	Total      string              `json:"total"`
}

func (h *Handler) handleListCart(w http.ResponseWriter, r *http.Request) {
	sum, err := h.shop.CartSummary(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	resp := cartResponse{
		Entries:    make([]cartEntryResponse, 0, len(sum.Entries)),
		TotalCents: int64(sum.Total),
		Total:      sum.Total.String(),
	}
	for _, e := range sum.Entries {
		resp.Entries = append(resp.Entries, toCartEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if err := h.shop.RemoveFromCart(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "entryID")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	Shipping shippingPayload `json:"shipping"`
}

type checkoutFailure struct {
	EntryID string `json:"entry_id"`
	Stage   string `json:"stage"`
	Error   string `json:"error"`
}

type checkoutResponse struct {
	OrderIDs []string          `json:"order_ids"`
	Failures []checkoutFailure `json:"failures,omitempty"`
}

// handleCheckoutCart answers 201 when every entry was ordered and 207 when
// only some were, listing the failures. A checkout stopped by cancellation
// after placing orders also answers 207 with what was placed.
func (h *Handler) handleCheckoutCart(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.shop.CheckoutCart(r.Context(), sessionFrom(r.Context()), req.Shipping.toDomain())
	if err != nil && !reportsPartial(res, err) {
		h.writeDomainError(w, r, err)
		return
	}

	resp := checkoutResponse{OrderIDs: res.OrderIDs}
	if resp.OrderIDs == nil {
		resp.OrderIDs = []string{}
	}
	for _, f := range res.Failures {
		resp.Failures = append(resp.Failures, checkoutFailure{EntryID: f.EntryID, Stage: string(f.Stage), Error: f.Err.Error()})
	}
	status := http.StatusCreated
	if err != nil {
		status = http.StatusMultiStatus
		logctx.FromOr(r.Context(), h.log).Warn("checkout_partial",
			observability.F("placed", len(res.OrderIDs)),
			observability.F("failed", len(res.Failures)),
			observability.Err(err),
		)
	}
	writeJSON(w, status, resp)
}

func reportsPartial(res *checkout.CheckoutResult, err error) bool {
	if res == nil {
		return false
	}
	if errors.Is(err, checkout.ErrPartialCheckout) {
		return true
	}
	return len(res.OrderIDs) > 0 || len(res.Failures) > 0
}

type buyNowRequest struct {
	GarmentID string          `json:"garment_id"`
	Size      string          `json:"size"`
	Shipping  shippingPayload `json:"shipping"`
}

func (h *Handler) handleBuyNow(w http.ResponseWriter, r *http.Request) {
	var req buyNowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	orderID, err := h.shop.BuyNow(r.Context(), checkout.BuyNowCommand{
		Session:        sessionFrom(r.Context()),
		GarmentID:      req.GarmentID,
		Size:           req.Size,
		Shipping:       req.Shipping.toDomain(),
		IdempotencyKey: r.Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"order_id": orderID})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.shop.ListOrders(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.opts.Health(ctx); err != nil {
			logctx.FromOr(r.Context(), h.log).Warn("health_check_failed", observability.Err(err))
			writeError(w, http.StatusServiceUnavailable, errors.New("unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type garmentResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	PriceCents int64    `json:"price_cents"`
	Price      string   `json:"price"`
	Category   string   `json:"category"`
	ImageRef   string   `json:"image_ref"`
	Sizes      []string `json:"sizes"`
}

func toGarmentResponse(g domcatalog.Garment) garmentResponse {
	return garmentResponse{
		ID:         g.ID,
		Name:       g.Name,
		PriceCents: int64(g.Price),
		Price:      g.Price.String(),
		Category:   g.Category,
		ImageRef:   g.ImageRef,
		Sizes:      g.Sizes,
	}
}

type cartEntryResponse struct {
	ID      string          `json:"id"`
	Garment garmentResponse `json:"garment"`
	Size    string          `json:"size"`
	AddedAt time.Time       `json:"added_at"`
}

func toCartEntryResponse(e domcart.Entry) cartEntryResponse {
	return cartEntryResponse{ID: e.ID, Garment: toGarmentResponse(e.Garment), Size: e.Size, AddedAt: e.AddedAt}
}

type shippingPayload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (p shippingPayload) toDomain() domorder.Shipping {
	return domorder.Shipping{Name: p.Name, Address: p.Address, Phone: p.Phone}
}

type orderResponse struct {
	ID       string          `json:"id"`
	Garment  garmentResponse `json:"garment"`
	Size     string          `json:"size"`
	Shipping shippingPayload `json:"shipping"`
	Status   string          `json:"status"`
	PlacedAt time.Time       `json:"placed_at"`
}

func toOrderResponse(o domorder.Order) orderResponse {
	return orderResponse{
		ID:       o.ID,
		Garment:  toGarmentResponse(o.Garment),
		Size:     o.Size,
		Shipping: shippingPayload(o.Shipping),
		Status:   string(o.Status),
		PlacedAt: o.PlacedAt,
	}
}
