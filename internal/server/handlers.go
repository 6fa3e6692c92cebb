package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/game"
	"github.com/natak-game/natak-server-go/internal/game/resources"
)

const maxBodyBytes = 1 << 16

type createRequest struct {
	Players int     `json:"players"`
	Seed    *uint64 `json:"seed,omitempty"`
}

type createResponse struct {
	GameID string            `json:"game_id"`
	Tokens map[string]string `json:"tokens,omitempty"`
	Status *game.Status      `json:"status"`
}

// commandRequest is the union of all action bodies. Each action reads only
// the fields it needs.
type commandRequest struct {
	Location  *int           `json:"location,omitempty"`
	Target    string         `json:"target,omitempty"`
	Resource  string         `json:"resource,omitempty"`
	Resources []string       `json:"resources,omitempty"`
	Cards     map[string]int `json:"cards,omitempty"`
	Give      string         `json:"give,omitempty"`
	Get       string         `json:"get,omitempty"`
	Offer     map[string]int `json:"offer,omitempty"`
	Request   map[string]int `json:"request,omitempty"`
}

type locationsResponse struct {
	Locations []int `json:"locations"`
}

// commandFunc runs one seat action against the engine.
type commandFunc func(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error)

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := s.engine.CreateGame(r.Context(), req.Players, req.Seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := createResponse{GameID: status.GameID, Status: status}
	if s.tokens != nil {
		if resp.Tokens, err = s.tokens.IssueAll(status.GameID, req.Players); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.logger.Info("game created via api", zap.String("game_id", status.GameID), zap.Int("players", req.Players))
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSpectate(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.Status(r.Context(), r.PathValue("gameId"), game.ColorNone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	gameID, c, err := s.seatFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := s.engine.Status(r.Context(), gameID, c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	if err := s.authorize(r, gameID, game.ColorNone); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.SaveGame(r.Context(), gameID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"game_id": gameID, "status": "saved"})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	if err := s.authorize(r, gameID, game.ColorNone); err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := s.engine.LoadGame(r.Context(), gameID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	if err := s.authorize(r, gameID, game.ColorNone); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.CloseGame(r.Context(), gameID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"game_id": gameID, "status": "closed"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	if _, err := s.engine.Status(r.Context(), gameID, game.ColorNone); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.stats.Stats(gameID))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	if _, err := s.engine.Status(r.Context(), gameID, game.ColorNone); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Serve(&s.upgrader, w, r, gameID)
}

func (s *Server) locations(query func(context.Context, string) ([]int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, _, err := s.seatFromPath(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		locs, err := query(r.Context(), gameID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if locs == nil {
			locs = []int{}
		}
		s.writeJSON(w, http.StatusOK, locationsResponse{Locations: locs})
	}
}

func (s *Server) command(fn commandFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, c, err := s.seatFromPath(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var req commandRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		status, err := fn(r.Context(), gameID, c, &req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, status)
	}
}

func (req *commandRequest) location() (int, error) {
	if req.Location == nil {
		return 0, fmt.Errorf("%w: location is required", errBadRequest)
	}
	return *req.Location, nil
}

func (req *commandRequest) target() (game.Color, error) {
	if req.Target == "" {
		return game.ColorNone, fmt.Errorf("%w: target is required", errBadRequest)
	}
	return game.ParseColor(req.Target)
}

func parseKind(s string) (resources.Kind, error) {
	k, err := resources.ParseKind(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return k, nil
}

func parseCollection(m map[string]int) (resources.Collection, error) {
	out := resources.NewCollection()
	for name, n := range m {
		k, err := parseKind(name)
		if err != nil {
			return nil, err
		}
		out[k] += n
	}
	return out, nil
}

func (s *Server) roll(ctx context.Context, gameID string, c game.Color, _ *commandRequest) (*game.Status, error) {
	return s.engine.RollDice(ctx, gameID, c)
}

func (s *Server) endTurn(ctx context.Context, gameID string, c game.Color, _ *commandRequest) (*game.Status, error) {
	return s.engine.EndTurn(ctx, gameID, c)
}

func (s *Server) buildRoad(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	loc, err := req.location()
	if err != nil {
		return nil, err
	}
	return s.engine.BuildRoad(ctx, gameID, c, loc)
}

func (s *Server) buildSettlement(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	loc, err := req.location()
	if err != nil {
		return nil, err
	}
	return s.engine.BuildSettlement(ctx, gameID, c, loc)
}

func (s *Server) buildTown(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	loc, err := req.location()
	if err != nil {
		return nil, err
	}
	return s.engine.BuildTown(ctx, gameID, c, loc)
}

func (s *Server) buyGrowthCard(ctx context.Context, gameID string, c game.Color, _ *commandRequest) (*game.Status, error) {
	return s.engine.BuyGrowthCard(ctx, gameID, c)
}

func (s *Server) playSoldier(ctx context.Context, gameID string, c game.Color, _ *commandRequest) (*game.Status, error) {
	return s.engine.PlaySoldier(ctx, gameID, c)
}

func (s *Server) playRoaming(ctx context.Context, gameID string, c game.Color, _ *commandRequest) (*game.Status, error) {
	return s.engine.PlayRoaming(ctx, gameID, c)
}

func (s *Server) playWealth(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	if len(req.Resources) != 2 {
		return nil, fmt.Errorf("%w: wealth takes exactly two resources", errBadRequest)
	}
	first, err := parseKind(req.Resources[0])
	if err != nil {
		return nil, err
	}
	second, err := parseKind(req.Resources[1])
	if err != nil {
		return nil, err
	}
	return s.engine.PlayWealth(ctx, gameID, c, first, second)
}

func (s *Server) playGatherer(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	kind, err := parseKind(req.Resource)
	if err != nil {
		return nil, err
	}
	return s.engine.PlayGatherer(ctx, gameID, c, kind)
}

func (s *Server) moveThief(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	loc, err := req.location()
	if err != nil {
		return nil, err
	}
	return s.engine.MoveThief(ctx, gameID, c, loc)
}

func (s *Server) stealResource(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	victim, err := req.target()
	if err != nil {
		return nil, err
	}
	return s.engine.StealResource(ctx, gameID, c, victim)
}

func (s *Server) discardResources(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	cards, err := parseCollection(req.Cards)
	if err != nil {
		return nil, err
	}
	return s.engine.DiscardResources(ctx, gameID, c, cards)
}

func (s *Server) tradeWithBank(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	give, err := parseKind(req.Give)
	if err != nil {
		return nil, err
	}
	get, err := parseKind(req.Get)
	if err != nil {
		return nil, err
	}
	return s.engine.TradeWithBank(ctx, gameID, c, give, get)
}

func (s *Server) makeOffer(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	offer, err := parseCollection(req.Offer)
	if err != nil {
		return nil, err
	}
	request, err := parseCollection(req.Request)
	if err != nil {
		return nil, err
	}
	return s.engine.MakeTradeOffer(ctx, gameID, c, offer, request)
}

func (s *Server) acceptOffer(ctx context.Context, gameID string, c game.Color, _ *commandRequest) (*game.Status, error) {
	return s.engine.RespondToTradeOffer(ctx, gameID, c, true)
}

func (s *Server) rejectOffer(ctx context.Context, gameID string, c game.Color, _ *commandRequest) (*game.Status, error) {
	return s.engine.RespondToTradeOffer(ctx, gameID, c, false)
}

func (s *Server) cancelOffer(ctx context.Context, gameID string, c game.Color, _ *commandRequest) (*game.Status, error) {
	return s.engine.CancelTradeOffer(ctx, gameID, c)
}

func (s *Server) embargo(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	target, err := req.target()
	if err != nil {
		return nil, err
	}
	return s.engine.Embargo(ctx, gameID, c, target)
}

func (s *Server) removeEmbargo(ctx context.Context, gameID string, c game.Color, req *commandRequest) (*game.Status, error) {
	target, err := req.target()
	if err != nil {
		return nil, err
	}
	return s.engine.RemoveEmbargo(ctx, gameID, c, target)
}
