// internal/httpserver/routes_session.go
//
// HTTP routes for the bingo session.
// Reads are public so a display screen can follow the game:
//   - GET  /patterns  → pattern catalog with masks and labels
//   - GET  /session   → full session snapshot
//   - GET  /winners   → combined, current-pattern and blackout winners
//
// Mutations sit behind requireOperator (a no-op when auth is disabled) and
// answer with the fresh snapshot:
//   - PUT    /session/cards/count             {"count": n}
//   - PUT    /session/cards/pending           {"text": "..."}
//   - POST   /session/cards/sync
//   - POST   /session/cards/select            {"index": n}
//   - PUT    /session/cards/{cardNumber}/id   {"cardId": "..."}
//   - PUT    /session/buffer/{position}       {"value": n|null}
//   - POST   /session/buffer/commit           → 422 with errors when invalid
//   - PUT    /session/called/{n}              {"on": bool}
//   - DELETE /session/called
//   - PUT    /session/pattern                 {"name": "..."}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/06AleKey04/bingo/internal/game"
	"github.com/06AleKey04/bingo/internal/session"
)

// mountSession registers the pattern, session and winner routes.
func (s *Server) mountSession(r chi.Router) {
	r.Get("/patterns", s.handlePatterns)
	r.Get("/session", s.handleSnapshot)
	r.Get("/winners", s.handleWinners)

	op := r.With(s.requireOperator)
	op.Put("/session/cards/count", s.handleCardCount)
	op.Put("/session/cards/pending", s.handlePendingCount)
	op.Post("/session/cards/sync", s.handleSyncCount)
	op.Post("/session/cards/select", s.handleSelectCard)
	op.Put("/session/cards/{cardNumber}/id", s.handleCardID)
	op.Put("/session/buffer/{position}", s.handleEditCell)
	op.Post("/session/buffer/commit", s.handleCommit)
	op.Put("/session/called/{n}", s.handleToggleCalled)
	op.Delete("/session/called", s.handleResetCalled)
	op.Put("/session/pattern", s.handleSetPattern)
}

// -----------------------------------------------------------------------------
// reads

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, game.All())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

// winnersRes is returned by GET /winners.
type winnersRes struct {
	Winners  []game.Winner `json:"winners"`
	Current  []game.Winner `json:"current"`
	Blackout []game.Winner `json:"blackout"`
}

func (s *Server) handleWinners(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.Snapshot()
	writeJSON(w, http.StatusOK, winnersRes{
		Winners:  snap.Winners,
		Current:  snap.CurrentWinners,
		Blackout: snap.BlackoutWinners,
	})
}

// -----------------------------------------------------------------------------
// cards

type countReq struct {
	Count *int `json:"count"`
}

func (s *Server) handleCardCount(w http.ResponseWriter, r *http.Request) {
	var p countReq
	if !decode(w, r, &p) {
		return
	}
	if p.Count == nil {
		writeError(w, http.StatusBadRequest, "count required")
		return
	}
	if err := s.sess.SetCardCount(r.Context(), *p.Count); err != nil {
		s.fail(w, err)
		return
	}
	s.respondSnapshot(w)
}

type pendingReq struct {
	Text string `json:"text"`
}

func (s *Server) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	var p pendingReq
	if !decode(w, r, &p) {
		return
	}
	s.sess.SetPendingCount(p.Text)
	s.respondSnapshot(w)
}

func (s *Server) handleSyncCount(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.SyncCardCount(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	s.respondSnapshot(w)
}

type selectReq struct {
	Index *int `json:"index"`
}

func (s *Server) handleSelectCard(w http.ResponseWriter, r *http.Request) {
	var p selectReq
	if !decode(w, r, &p) {
		return
	}
	if p.Index == nil {
		writeError(w, http.StatusBadRequest, "index required")
		return
	}
	s.sess.SelectCard(r.Context(), *p.Index)
	s.respondSnapshot(w)
}

type cardIDReq struct {
	CardID string `json:"cardId"`
}

func (s *Server) handleCardID(w http.ResponseWriter, r *http.Request) {
	num, err := strconv.Atoi(chi.URLParam(r, "cardNumber"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad card number")
		return
	}
	var p cardIDReq
	if !decode(w, r, &p) {
		return
	}
	if err := s.sess.SetCardID(r.Context(), num, p.CardID); err != nil {
		s.fail(w, err)
		return
	}
	s.respondSnapshot(w)
}

// -----------------------------------------------------------------------------
// edit buffer

type cellReq struct {
	Value *int `json:"value"` // null or absent clears the cell
}

func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad position")
		return
	}
	var p cellReq
	if !decode(w, r, &p) {
		return
	}
	if err := s.sess.EditCell(pos, p.Value); err != nil {
		s.fail(w, err)
		return
	}
	s.respondSnapshot(w)
}

// commitErrRes is returned with 422 when the buffer does not validate.
type commitErrRes struct {
	Error  string                 `json:"error"`
	Errors []game.ValidationError `json:"errors"`
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	errs, err := s.sess.CommitEditBuffer(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, commitErrRes{Error: "invalid_card", Errors: errs})
		return
	}
	s.respondSnapshot(w)
}

// -----------------------------------------------------------------------------
// called numbers and pattern

type toggleReq struct {
	On *bool `json:"on"`
}

func (s *Server) handleToggleCalled(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad number")
		return
	}
	var p toggleReq
	if !decode(w, r, &p) {
		return
	}
	if p.On == nil {
		writeError(w, http.StatusBadRequest, "on required")
		return
	}
	if err := s.sess.ToggleCalledNumber(r.Context(), n, *p.On); err != nil {
		s.fail(w, err)
		return
	}
	s.respondSnapshot(w)
}

func (s *Server) handleResetCalled(w http.ResponseWriter, r *http.Request) {
	s.sess.ResetCalledNumbers(r.Context())
	s.respondSnapshot(w)
}

type patternReq struct {
	Name string `json:"name"`
}

func (s *Server) handleSetPattern(w http.ResponseWriter, r *http.Request) {
	var p patternReq
	if !decode(w, r, &p) {
		return
	}
	if err := s.sess.SetPattern(r.Context(), p.Name); err != nil {
		s.fail(w, err)
		return
	}
	s.respondSnapshot(w)
}

// -----------------------------------------------------------------------------
// helpers

func (s *Server) respondSnapshot(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 64 << 10

// decode reads a JSON body into v, answering 413 when the body is too
// large and 400 on any other failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "bad request")
		return false
	}
	return true
}

// fail maps session errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNegativeCount),
		errors.Is(err, session.ErrPositionOutOfRange),
		errors.Is(err, session.ErrNumberOutOfRange),
		errors.Is(err, game.ErrUnknownPattern):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrCardNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrNoCardSelected):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("session operation")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
