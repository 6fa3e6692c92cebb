package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/config"
	"github.com/natak-game/natak-server-go/internal/game"
	"github.com/natak-game/natak-server-go/internal/game/watchers"
)

const apiPrefix = "/api/v1/natak"

// Server exposes the engine over HTTP and a websocket event feed.
type Server struct {
	engine   *game.Engine
	hub      *Hub
	stats    *watchers.Tracker
	tokens   *TokenIssuer
	logger   *zap.Logger
	origins  []string
	upgrader websocket.Upgrader
}

// NewServer wires the HTTP surface around engine. tokens may be nil, in
// which case seat routes are open to any caller.
func NewServer(engine *game.Engine, tokens *TokenIssuer, cfg config.HTTPConfig, logger *zap.Logger) *Server {
	s := &Server{
		engine:  engine,
		hub:     NewHub(engine.Events(), logger),
		stats:   watchers.NewTracker(engine.Events()),
		tokens:  tokens,
		logger:  logger.Named("http"),
		origins: cfg.AllowedOrigins,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Run starts event delivery to websocket watchers until ctx ends.
func (s *Server) Run(ctx context.Context) {
	defer s.stats.Close()
	s.hub.Run(ctx)
}

// Handler returns the routed handler wrapped in recovery, access logging
// and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(h)
	h = handlers.CombinedLoggingHandler(zap.NewStdLog(s.logger.Named("access")).Writer(), h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return h
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST "+apiPrefix, s.handleCreate)
	mux.HandleFunc("GET "+apiPrefix+"/{gameId}", s.handleSpectate)
	mux.HandleFunc("DELETE "+apiPrefix+"/{gameId}", s.handleClose)
	mux.HandleFunc("GET "+apiPrefix+"/{gameId}/events", s.handleEvents)
	mux.HandleFunc("GET "+apiPrefix+"/{gameId}/stats", s.handleStats)
	mux.HandleFunc("POST "+apiPrefix+"/{gameId}/save", s.handleSave)
	mux.HandleFunc("POST "+apiPrefix+"/{gameId}/load", s.handleLoad)

	seat := apiPrefix + "/{gameId}/{colour}"
	mux.HandleFunc("GET "+seat, s.handleStatus)
	mux.HandleFunc("GET "+seat+"/available-road-locations", s.locations(s.engine.AvailableRoadLocations))
	mux.HandleFunc("GET "+seat+"/available-village-locations", s.locations(s.engine.AvailableSettlementLocations))
	mux.HandleFunc("GET "+seat+"/available-town-locations", s.locations(s.engine.AvailableTownLocations))

	mux.HandleFunc("POST "+seat+"/roll", s.command(s.roll))
	mux.HandleFunc("POST "+seat+"/end-turn", s.command(s.endTurn))
	mux.HandleFunc("POST "+seat+"/build/road", s.command(s.buildRoad))
	mux.HandleFunc("POST "+seat+"/build/village", s.command(s.buildSettlement))
	mux.HandleFunc("POST "+seat+"/build/town", s.command(s.buildTown))
	mux.HandleFunc("POST "+seat+"/buy/growth-card", s.command(s.buyGrowthCard))
	mux.HandleFunc("POST "+seat+"/play-growth-card/soldier", s.command(s.playSoldier))
	mux.HandleFunc("POST "+seat+"/play-growth-card/roaming", s.command(s.playRoaming))
	mux.HandleFunc("POST "+seat+"/play-growth-card/wealth", s.command(s.playWealth))
	mux.HandleFunc("POST "+seat+"/play-growth-card/gatherer", s.command(s.playGatherer))
	mux.HandleFunc("POST "+seat+"/move-thief", s.command(s.moveThief))
	mux.HandleFunc("POST "+seat+"/steal-resource", s.command(s.stealResource))
	mux.HandleFunc("POST "+seat+"/discard-resources", s.command(s.discardResources))
	mux.HandleFunc("POST "+seat+"/trade/bank", s.command(s.tradeWithBank))
	mux.HandleFunc("POST "+seat+"/trade/player", s.command(s.makeOffer))
	mux.HandleFunc("POST "+seat+"/trade/player/accept", s.command(s.acceptOffer))
	mux.HandleFunc("POST "+seat+"/trade/player/reject", s.command(s.rejectOffer))
	mux.HandleFunc("POST "+seat+"/trade/player/cancel", s.command(s.cancelOffer))
	mux.HandleFunc("POST "+seat+"/embargo-player", s.command(s.embargo))
	mux.HandleFunc("POST "+seat+"/remove-embargo", s.command(s.removeEmbargo))
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// authorize checks the bearer token against the game and, when seat is set,
// the seat. Without an issuer every request passes.
func (s *Server) authorize(r *http.Request, gameID string, seat game.Color) error {
	if s.tokens == nil {
		return nil
	}
	return s.tokens.Verify(bearerToken(r.Header.Get("Authorization")), gameID, seat)
}

// seatFromPath resolves and authorises the {gameId}/{colour} pair.
func (s *Server) seatFromPath(r *http.Request) (string, game.Color, error) {
	gameID := r.PathValue("gameId")
	c, err := game.ParseColor(r.PathValue("colour"))
	if err != nil {
		return "", game.ColorNone, err
	}
	if err := s.authorize(r, gameID, c); err != nil {
		return "", game.ColorNone, err
	}
	return gameID, c, nil
}

type recoveryLogger struct {
	logger *zap.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic while serving request", zap.String("panic", fmt.Sprint(v...)))
}
