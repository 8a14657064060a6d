package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gavvahar/Monopoly-Deal/internal/access"
	"github.com/gavvahar/Monopoly-Deal/internal/catalog"
	"github.com/gavvahar/Monopoly-Deal/internal/game"
	"github.com/gavvahar/Monopoly-Deal/internal/session"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type startRequest struct {
	PlayerID string `json:"player_id"`
	Seed     int64  `json:"seed,omitempty"`
}

type actionRequest struct {
	PlayerID   string `json:"player_id"`
	Kind       string `json:"kind"`
	Card       int    `json:"card,omitempty"`
	Color      string `json:"color,omitempty"`
	Target     string `json:"target,omitempty"`
	TargetCard int    `json:"target_card,omitempty"`
	GiveCard   int    `json:"give_card,omitempty"`
	DoubleRent []int  `json:"double_rent,omitempty"`
	Discards   []int  `json:"discards,omitempty"`
}

func (req *actionRequest) toAction() (game.Action, error) {
	kind, ok := game.ParseActionKind(req.Kind)
	if !ok {
		return game.Action{}, fmt.Errorf("unknown action kind %q", req.Kind)
	}
	action := game.Action{
		Kind:       kind,
		Card:       catalog.CardID(req.Card),
		Target:     req.Target,
		TargetCard: catalog.CardID(req.TargetCard),
		GiveCard:   catalog.CardID(req.GiveCard),
	}
	if req.Color != "" {
		color, ok := catalog.ParseColor(req.Color)
		if !ok {
			return game.Action{}, fmt.Errorf("unknown color %q", req.Color)
		}
		action.Color = color
	}
	for _, id := range req.DoubleRent {
		action.DoubleRent = append(action.DoubleRent, catalog.CardID(id))
	}
	for _, id := range req.Discards {
		action.Discards = append(action.Discards, catalog.CardID(id))
	}
	return action, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusOf(err), errorResponse{Error: err.Error()})
}

// statusOf maps engine errors onto HTTP statuses. Unrecognized errors are
// client mistakes, not server faults: the engine validates before mutating.
func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, game.ErrUnknownCard):
		return http.StatusNotFound
	case errors.Is(err, access.ErrDenied):
		return http.StatusForbidden
	case errors.Is(err, session.ErrSessionFull),
		errors.Is(err, session.ErrSessionNotJoinable),
		errors.Is(err, session.ErrAlreadyJoined),
		errors.Is(err, session.ErrAlreadyStarted),
		errors.Is(err, session.ErrNotEnoughPlayers),
		errors.Is(err, session.ErrNotStarted),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrSessionFrozen):
		return http.StatusConflict
	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrMustDrawFirst),
		errors.Is(err, game.ErrActionLimitExceeded),
		errors.Is(err, game.ErrHandOverLimit),
		errors.Is(err, game.ErrResolving),
		errors.Is(err, game.ErrNotResolving):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrConsistency):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, s.sessions.List())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.sessions.Create(r.Context(), req.PlayerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	info, err := s.sessions.Get(ps.ByName("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.sessions.Join(r.Context(), ps.ByName("id"), req.PlayerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sessions.Leave(ps.ByName("id"), req.PlayerID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req startRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.sessions.Start(ps.ByName("id"), req.PlayerID, req.Seed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req actionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	action, err := req.toAction()
	if err != nil {
		s.writeError(w, err)
		return
	}

	sessionID := ps.ByName("id")
	delta, err := s.sessions.Dispatch(sessionID, req.PlayerID, action)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.snapshots != nil {
		go s.journalSnapshot(sessionID)
	}
	s.writeJSON(w, http.StatusOK, delta)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	playerID := r.URL.Query().Get("player_id")
	view, err := s.sessions.View(ps.ByName("id"), playerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// journalSnapshot persists the latest state off the request path. Failures
// are logged, never surfaced: the in-memory engine stays authoritative.
func (s *Server) journalSnapshot(sessionID string) {
	data, checksum, err := s.sessions.Snapshot(sessionID)
	if err != nil {
		return
	}
	var seqProbe struct {
		Seq int `json:"seq"`
	}
	if err := json.Unmarshal(data, &seqProbe); err != nil {
		s.logger.Warn("decode snapshot seq", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snapshots.Save(ctx, sessionID, seqProbe.Seq, data, checksum); err != nil {
		s.logger.Warn("journal snapshot",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}
