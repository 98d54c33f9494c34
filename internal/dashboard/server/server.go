package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"cricstats/internal/components/assert"
	"cricstats/internal/components/telemetry"
	"cricstats/internal/dashboard"
	"cricstats/internal/innings"
	"cricstats/internal/store"
	"cricstats/pkg/textutil"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cricstats/internal/dashboard/server")

const (
	report_server_request   = "server.request"
	report_server_recompute = "server.recompute"
	report_server_encode    = "server.encode"
)

//go:embed static
var static embed.FS

// Source is the read side of the innings store.
type Source interface {
	Players(ctx context.Context) ([]string, error)
	Innings(ctx context.Context, table string) ([]innings.Innings, error)
}

type Options struct {
	AllowedOrigins []string
	// Defaults is the state every session and every view request starts from.
	Defaults dashboard.State
	// Location is the zone match dates are read in.
	Location *time.Location
}

type Server struct {
	source Source
	opts   Options
	tel    telemetry.API
}

func New(source Source, opts Options, tel telemetry.API) *Server {
	assert.NotNil(source)
	assert.NotNil(tel)
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Server{
		source: source,
		opts:   opts,
		tel:    telemetry.NewScopedAPI("dashboard", tel),
	}
}

// Router wires every endpoint of the dashboard.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handlePlayers)
		r.Get("/controls", s.handleControls)
		r.Get("/view", s.handleView)
	})
	r.Get("/ws", s.handleSession)
	r.Get("/", s.handleIndex)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.tel.ReportDebug(
			report_server_request,
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start).String(),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		s.tel.ReportWarning(report_server_encode, err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.source.Players(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if players == nil {
		players = []string{}
	}
	s.writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	players, err := s.source.Players(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dashboard.NewControls(players, s.opts.Defaults))
}

// queryControls are applied in this order so a request is read the same
// way every time.
var queryControls = []dashboard.Control{
	dashboard.ControlMinBallsFaced,
	dashboard.ControlMinStrikeRate,
	dashboard.ControlMinRuns,
	dashboard.ControlX,
	dashboard.ControlY,
	dashboard.ControlPlayer1,
	dashboard.ControlPlayer2,
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	state := s.opts.Defaults
	query := r.URL.Query()
	for _, control := range queryControls {
		if !query.Has(string(control)) {
			continue
		}
		next, err := state.Apply(dashboard.ControlEvent{
			Control: control,
			Value:   query.Get(string(control)),
		})
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		state = next
	}

	view, err := s.Recompute(r.Context(), state)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Write(page)
}

// resolvePlayer maps a requested name onto a stored table, falling back to
// the most similar table name. It returns "" when nothing is stored.
func resolvePlayer(name string, players []string) string {
	if slices.Contains(players, name) {
		return name
	}
	best, _, ok := textutil.Closest(name, players)
	if !ok {
		return ""
	}
	return best
}

func (s *Server) loadPlayer(ctx context.Context, table string) ([]innings.Innings, error) {
	if table == "" {
		return nil, nil
	}
	rows, err := s.source.Innings(ctx, table)
	if errors.Is(err, store.ErrNoTable) {
		return nil, nil
	}
	return rows, err
}

// Recompute resolves both players of a state against the store and
// computes the view from scratch.
func (s *Server) Recompute(ctx context.Context, state dashboard.State) (dashboard.View, error) {
	ctx, span := tracer.Start(ctx, "Recompute")
	defer span.End()

	players, err := s.source.Players(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list players")
		s.tel.ReportBroken(report_server_recompute, err)
		return dashboard.View{}, err
	}

	state.Player1 = resolvePlayer(state.Player1, players)
	state.Player2 = resolvePlayer(state.Player2, players)
	span.SetAttributes(
		attribute.String("player_1", state.Player1),
		attribute.String("player_2", state.Player2),
	)

	table1, err := s.loadPlayer(ctx, state.Player1)
	if err != nil {
		span.RecordError(err)
		s.tel.ReportBroken(report_server_recompute, state.Player1, err)
		return dashboard.View{}, fmt.Errorf("load %s: %w", state.Player1, err)
	}
	table2, err := s.loadPlayer(ctx, state.Player2)
	if err != nil {
		span.RecordError(err)
		s.tel.ReportBroken(report_server_recompute, state.Player2, err)
		return dashboard.View{}, fmt.Errorf("load %s: %w", state.Player2, err)
	}

	return dashboard.Recompute(state, table1, table2, s.opts.Location), nil
}
