package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/application"
	"pricewatch-service/internal/domain"
)

type Server struct {
	engine *application.Engine
	ping   func(ctx context.Context) error
}

func NewServer(engine *application.Engine, ping func(ctx context.Context) error) *Server {
	return &Server{engine: engine, ping: ping}
}

type priceRecordDTO struct {
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	ObservedAt time.Time       `json:"observed_at"`
}

type statsDTO struct {
	Low     decimal.Decimal `json:"low"`
	High    decimal.Decimal `json:"high"`
	Average string          `json:"average"` // fixed 2 decimals
	Count   int             `json:"count"`
	Latest  priceRecordDTO  `json:"latest"`
}

func toRecordDTO(r domain.PriceRecord) priceRecordDTO {
	return priceRecordDTO{Title: r.Title, Price: r.Price, Currency: r.Currency, ObservedAt: r.ObservedAt}
}

func toStatsDTO(s domain.PriceStats) statsDTO {
	return statsDTO{
		Low:     s.Low,
		High:    s.High,
		Average: s.Average.StringFixed(2),
		Count:   s.Count,
		Latest:  toRecordDTO(s.Latest),
	}
}

func (s *Server) CheckItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if body.URL == "" {
		badRequest(w, "url is required")
		return
	}
	snap, stats, err := s.engine.CheckItem(r.Context(), body.URL)
	if err != nil {
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Title    string          `json:"title"`
		Price    decimal.Decimal `json:"price"`
		Currency string          `json:"currency"`
		Stats    statsDTO        `json:"stats"`
	}{snap.Title, snap.Price, snap.Currency, toStatsDTO(stats)})
}

func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("url")
	if itemID == "" {
		badRequest(w, "url is required")
		return
	}
	stats, err := s.engine.Stats(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w)
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

func (s *Server) ListDeals(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}
	deals, err := s.engine.Deals(r.Context(), limit)
	if err != nil {
		internalError(w)
		return
	}
	type dealDTO struct {
		ItemID        string          `json:"item_id"`
		Title         string          `json:"title"`
		CurrentPrice  decimal.Decimal `json:"current_price"`
		PreviousPrice decimal.Decimal `json:"previous_price"`
		DropPct       string          `json:"drop_pct"` // fixed 1 decimal
		Currency      string          `json:"currency"`
	}
	out := make([]dealDTO, 0, len(deals))
	for _, d := range deals {
		out = append(out, dealDTO{
			ItemID:        d.ItemID,
			Title:         d.Title,
			CurrentPrice:  d.CurrentPrice,
			PreviousPrice: d.PreviousPrice,
			DropPct:       d.DropPct.StringFixed(1),
			Currency:      d.Currency,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type subscriptionDTO struct {
	OwnerID       string          `json:"owner_id"`
	DestinationID string          `json:"destination_id"`
	URL           string          `json:"url"`
	TargetPrice   decimal.Decimal `json:"target_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (s *Server) Subscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OwnerID       string          `json:"owner_id"`
		DestinationID string          `json:"destination_id"`
		URL           string          `json:"url"`
		TargetPrice   decimal.Decimal `json:"target_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if body.OwnerID == "" || body.DestinationID == "" || body.URL == "" {
		badRequest(w, "owner_id, destination_id and url are required")
		return
	}
	item, err := s.engine.Subscribe(r.Context(), body.OwnerID, body.DestinationID, body.URL, body.TargetPrice)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPrice) {
			badRequest(w, "target_price must be positive")
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusCreated, subscriptionDTO{
		OwnerID:       item.OwnerID,
		DestinationID: item.DestinationID,
		URL:           item.ItemID,
		TargetPrice:   item.TargetPrice,
		CreatedAt:     item.CreatedAt,
	})
}

func (s *Server) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OwnerID string `json:"owner_id"`
		URL     string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if body.OwnerID == "" || body.URL == "" {
		badRequest(w, "owner_id and url are required")
		return
	}
	if err := s.engine.Unsubscribe(r.Context(), body.OwnerID, body.URL); err != nil {
		internalError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		badRequest(w, "owner_id is required")
		return
	}
	items, err := s.engine.Subscriptions(r.Context(), ownerID)
	if err != nil {
		internalError(w)
		return
	}
	out := make([]subscriptionDTO, 0, len(items))
	for _, it := range items {
		out = append(out, subscriptionDTO{
			OwnerID:       it.OwnerID,
			DestinationID: it.DestinationID,
			URL:           it.ItemID,
			TargetPrice:   it.TargetPrice,
			CreatedAt:     it.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
