// Package api provides the HTTP API for generating and browsing maps.
// GET endpoints are public. Generation is rate limited and, when an admin
// key is configured, requires a bearer token; deletion always does.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/talgya/hexterrain/internal/mapgen"
	"github.com/talgya/hexterrain/internal/persistence"
	"github.com/talgya/hexterrain/internal/world"
)

// MaxCells caps the size of maps generated over HTTP.
const MaxCells = 200 * 150

// Server serves map generation over HTTP.
type Server struct {
	Gen      *mapgen.Generator
	DB       *persistence.DB // nil disables the archive endpoints
	Defaults mapgen.Config   // base for request overrides
	Port     int
	AdminKey string // Bearer token for generate and delete. Empty = generate open, delete disabled.

	// Generate requests per IP per hour. Zero uses 30.
	GenerateLimit int
	// TrustProxy keys the rate limit on the proxy-appended X-Forwarded-For
	// entry instead of the connection address.
	TrustProxy bool

	started   time.Time
	generated atomic.Int64
	limiter   *RateLimiter
}

// Handler builds the router. The generate limiter is created on the first
// call and shared by later ones; Close stops it.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	if s.limiter == nil {
		limit := s.GenerateLimit
		if limit <= 0 {
			limit = 30
		}
		s.limiter = NewRateLimiter(limit, time.Hour)
		s.limiter.TrustProxy = s.TrustProxy
	}
	generateLimiter := s.limiter

	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.With(generateLimiter.Middleware, s.tokenIfConfigured).Post("/generate", s.handleGenerate)

		r.Route("/maps", func(r chi.Router) {
			r.Use(s.requireArchive)
			r.Get("/", s.handleListMaps)
			r.Get("/{id}", s.handleGetMap)
			r.With(s.adminOnly).Delete("/{id}", s.handleDeleteMap)
		})
	})
	return r
}

// Close releases the background work started by Handler.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// ListenAndServe serves the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer s.Close()
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "", "archive", s.DB != nil)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("HTTP API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires the admin token and refuses when none is configured.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no TERRAIN_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// tokenIfConfigured requires the admin token only when one is set.
func (s *Server) tokenIfConfigured(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey != "" && !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireArchive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.DB == nil {
			http.Error(w, "map archive disabled (no TERRAIN_DB set)", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":       "hexterrain",
		"uptime":     humanize.RelTime(s.started, time.Now(), "", ""),
		"generated":  s.generated.Load(),
		"archive":    s.DB != nil,
		"defaults":   s.Defaults,
		"max_cells":  MaxCells,
		"admin_auth": s.AdminKey != "",
	}
	if s.DB != nil {
		if last, err := s.DB.GetMeta("last_map"); err == nil {
			status["last_map"] = last
		}
	}
	writeJSON(w, http.StatusOK, status)
}

// handleGenerate decodes config overrides from the body, generates a map
// and archives it when the archive is enabled.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	cfg := s.Defaults
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			http.Error(w, "invalid config: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, "invalid config: "+err.Error(), http.StatusBadRequest)
		return
	}
	if cfg.CellCountX*cfg.CellCountZ > MaxCells {
		http.Error(w, fmt.Sprintf("map too large: %dx%d exceeds %d cells", cfg.CellCountX, cfg.CellCountZ, MaxCells), http.StatusBadRequest)
		return
	}

	res, err := s.Gen.Generate(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.generated.Add(1)

	resp := mapResponse{
		Seed:   res.Seed,
		Width:  res.Grid.CellCountX,
		Height: res.Grid.CellCountZ,
		Config: res.Config,
		Stats:  res.Stats,
		Cells:  cellEntries(res.Grid),
	}
	if s.DB != nil {
		id, err := s.DB.SaveMap(res, r.URL.Query().Get("name"))
		if err != nil {
			slog.Error("archive map failed", "error", err)
			http.Error(w, "archive failed", http.StatusInternalServerError)
			return
		}
		if err := s.DB.SaveMeta("last_map", id); err != nil {
			slog.Warn("save meta failed", "error", err)
		}
		resp.ID = id
	}

	slog.Info("map generated via API", "id", resp.ID, "seed", res.Seed, "elapsed", res.Stats.Elapsed)
	writeJSON(w, http.StatusCreated, resp)
}

type listEntry struct {
	persistence.MapSummary
	Age string `json:"age"`
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 500)
	}

	maps, err := s.DB.ListMaps(limit)
	if err != nil {
		slog.Error("list maps failed", "error", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	entries := make([]listEntry, 0, len(maps))
	for _, m := range maps {
		entries = append(entries, listEntry{MapSummary: m, Age: humanize.Time(m.Created())})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	m, err := s.DB.LoadMap(chi.URLParam(r, "id"))
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "map not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load map failed", "error", err)
		http.Error(w, "load failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, mapResponse{
		ID:        m.ID,
		Name:      m.Name,
		Seed:      m.Seed,
		Width:     m.Width,
		Height:    m.Height,
		CreatedAt: m.CreatedAt,
		Config:    m.Config,
		Stats:     m.Stats,
		Cells:     cellEntries(m.Grid),
	})
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	err := s.DB.DeleteMap(chi.URLParam(r, "id"))
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "map not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("delete map failed", "error", err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mapResponse is the bulk export of one map.
type mapResponse struct {
	ID        string        `json:"id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Seed      int64         `json:"seed"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	CreatedAt string        `json:"created_at,omitempty"`
	Config    mapgen.Config `json:"config"`
	Stats     mapgen.Stats  `json:"stats"`
	Cells     []cellEntry   `json:"cells"`
}

type cellEntry struct {
	X          int              `json:"x"`
	Z          int              `json:"z"`
	Elevation  int              `json:"elevation"`
	WaterLevel int              `json:"water_level"`
	Terrain    int              `json:"terrain"`
	Plant      int              `json:"plant,omitempty"`
	RiverIn    *world.Direction `json:"river_in,omitempty"`
	RiverOut   *world.Direction `json:"river_out,omitempty"`
	MapData    float64          `json:"map_data"`
}

func cellEntries(g *world.Grid) []cellEntry {
	cells := make([]cellEntry, 0, g.Len())
	for i := 0; i < g.Len(); i++ {
		c := g.Cell(i)
		e := cellEntry{
			X:          c.OffsetX,
			Z:          c.OffsetZ,
			Elevation:  c.Elevation(),
			WaterLevel: c.WaterLevel(),
			Terrain:    c.TerrainType,
			Plant:      c.PlantLevel,
			MapData:    c.MapData,
		}
		if c.HasIncomingRiver() {
			d := c.IncomingRiver()
			e.RiverIn = &d
		}
		if c.HasOutgoingRiver() {
			d := c.OutgoingRiver()
			e.RiverOut = &d
		}
		cells = append(cells, e)
	}
	return cells
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
