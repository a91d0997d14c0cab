package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/swelljoe/wthrbar/internal/places"
	"github.com/swelljoe/wthrbar/internal/weather"
)

// Database defines the interface for database operations needed by handlers
type Database interface {
	SearchPlaces(query string) ([]places.Place, error)
	Ping() error
}

// StatusSource produces the current status line.
type StatusSource interface {
	Status(ctx context.Context, now time.Time) (weather.Result, error)
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	db     Database
	status StatusSource
	now    func() time.Time
}

// New creates a new Handlers instance. db may be nil when no gazetteer is
// available.
func New(database Database, status StatusSource) *Handlers {
	return &Handlers{
		db:     database,
		status: status,
		now:    time.Now,
	}
}

type statusResponse struct {
	FullText    string `json:"full_text"`
	CachedUntil int64  `json:"cached_until"`
}

// HandleStatus renders the status line as JSON
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	res, err := h.status.Status(r.Context(), now)
	if err != nil {
		log.Printf("Status error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	maxAge := int(res.ValidUntil.Sub(now).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", maxAge))
	if err := json.NewEncoder(w).Encode(statusResponse{
		FullText:    res.Text,
		CachedUntil: res.ValidUntil.Unix(),
	}); err != nil {
		log.Printf("Response write error: %v", err)
	}
}

// HandleHealth handles health check endpoint
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
		}
	} else {
		status = "no_database"
	}

	w.Write([]byte(`{"status":"` + status + `"}`))
}

// HandleSearch looks up location identifiers by place name
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) < 2 || h.db == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
		return
	}

	found, err := h.db.SearchPlaces(q)
	if err != nil {
		log.Printf("Search error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if found == nil {
		found = []places.Place{}
	}

	data, err := json.Marshal(found)
	if err != nil {
		log.Printf("JSON encode error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		log.Printf("Response write error: %v", err)
	}
}

// Routes registers every handler on a new mux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", h.HandleStatus)
	mux.HandleFunc("GET /places", h.HandleSearch)
	mux.HandleFunc("GET /health", h.HandleHealth)
	return mux
}
