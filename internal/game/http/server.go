package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/barobets-game-poc/internal/game/dto"
	"github.com/radieske/barobets-game-poc/internal/game/engine"
	"github.com/radieske/barobets-game-poc/pkg/contracts/events"
)

// Publisher publica os eventos do jogo (Kafka). Best-effort: falha de
// publicação não desfaz o comando já aplicado.
type Publisher interface {
	PublishGuessPlaced(context.Context, events.GuessPlaced) error
	PublishGameFinished(context.Context, events.GameFinished) error
}

// Server é a superfície de mensagens do BaroBets: traduz HTTP em comandos do
// engine e outcomes em payloads. Nenhuma regra de jogo vive aqui.
type Server struct {
	log  *zap.Logger
	reg  *engine.Registry
	publ Publisher

	// callbacks de métricas (counter++), ligadas no main
	OnGuessAccepted func()
	OnGameFinished  func()
	OnRewardPaid    func(coins int64)
}

func NewServer(log *zap.Logger, reg *engine.Registry, publ Publisher) *Server {
	return &Server{log: log, reg: reg, publ: publ}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/games", s.games)      // POST cria, GET lista
	mux.HandleFunc("/games/", s.gameByID)  // subrecursos /games/{id|latest}/...
	return mux
}

func (s *Server) games(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createGame(w, r)
	case http.MethodGet:
		s.listGames(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.CycloneTime.IsZero() {
		http.Error(w, "cyclone_time required", http.StatusBadRequest)
		return
	}

	info, err := s.reg.CreateGame(r.Context(), req.CycloneTime, req.CloseTime)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, gameResponse(info))
}

func (s *Server) listGames(w http.ResponseWriter, _ *http.Request) {
	infos := s.reg.List()
	out := make([]dto.GameResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, gameResponse(info))
	}
	writeJSON(w, out)
}

// gameByID despacha /games/{id}[/{action}]. id aceita "latest" como alias do
// jogo mais recente.
func (s *Server) gameByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/games/")
	idTok, action, _ := strings.Cut(rest, "/")

	gameID, ok := s.resolveID(idTok)
	if !ok {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.gameInfo(w, r, gameID)
	case action == "" && r.Method == http.MethodDelete:
		s.deleteGame(w, r, gameID)
	case action == "guesses" && r.Method == http.MethodPost:
		s.submitGuess(w, r, gameID)
	case action == "close" && r.Method == http.MethodPost:
		s.closeGame(w, r, gameID)
	case action == "open" && r.Method == http.MethodPost:
		s.forceOpen(w, r, gameID)
	case action == "observe" && r.Method == http.MethodPost:
		s.observe(w, r, gameID)
	case action == "finish" && r.Method == http.MethodPost:
		s.finishGame(w, r, gameID)
	case action == "board" && r.Method == http.MethodGet:
		s.board(w, r, gameID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) resolveID(tok string) (int64, bool) {
	if tok == "latest" {
		id, ok := s.reg.LatestID()
		return id, ok
	}
	id, err := strconv.ParseInt(tok, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) gameInfo(w http.ResponseWriter, _ *http.Request, gameID int64) {
	info, err := s.reg.Info(gameID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, gameResponse(info))
}

func (s *Server) deleteGame(w http.ResponseWriter, r *http.Request, gameID int64) {
	if err := s.reg.DeleteGame(r.Context(), gameID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) submitGuess(w http.ResponseWriter, r *http.Request, gameID int64) {
	var req dto.SubmitGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Pressure <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	out, err := s.reg.SubmitGuess(r.Context(), gameID, req.UserID, req.Pressure, req.Wager)
	if err != nil {
		if errors.Is(err, engine.ErrInsufficientFunds) {
			w.WriteHeader(http.StatusConflict)
			writeJSON(w, dto.SubmitGuessResponse{
				GameID:  gameID,
				UserID:  req.UserID,
				Status:  "INSUFFICIENT_FUNDS",
				Cost:    out.Cost,
				Balance: out.Balance,
				Message: "not enough coins to place the wager",
			})
			return
		}
		s.writeError(w, err)
		return
	}

	if out.Closed {
		w.WriteHeader(http.StatusConflict)
		writeJSON(w, dto.SubmitGuessResponse{
			GameID:  gameID,
			UserID:  req.UserID,
			Status:  "GAME_CLOSED",
			Message: "guessing for this game is closed",
			Board:   boardResponse(out.Board),
		})
		return
	}

	if s.OnGuessAccepted != nil {
		s.OnGuessAccepted()
	}
	_ = s.publ.PublishGuessPlaced(r.Context(), events.GuessPlaced{
		GameID:  gameID,
		UserID:  req.UserID,
		Value:   out.Value,
		Wagered: req.Wager,
	})

	writeJSON(w, dto.SubmitGuessResponse{
		GameID:          gameID,
		UserID:          req.UserID,
		Value:           out.Value,
		Status:          "ACCEPTED",
		Warning:         string(out.Warning),
		DuplicateOf:     out.DuplicateOf,
		DuplicateOfName: out.DuplicateOfName,
		StakeCharged:    out.StakeCharged,
		StakeRefunded:   out.StakeRefunded,
	})
}

func (s *Server) closeGame(w http.ResponseWriter, r *http.Request, gameID int64) {
	if err := s.reg.CloseGame(r.Context(), gameID); err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.reg.Info(gameID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, gameResponse(info))
}

func (s *Server) forceOpen(w http.ResponseWriter, r *http.Request, gameID int64) {
	opened, err := s.reg.ForceOpen(r.Context(), gameID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, dto.ForceOpenResponse{GameID: gameID, Opened: opened})
}

func (s *Server) observe(w http.ResponseWriter, r *http.Request, gameID int64) {
	var req dto.ObserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Pressure <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.reg.Observe(r.Context(), gameID, req.Pressure); err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidStage):
			s.conflict(w, "game is still accepting guesses; close it before observing")
		case errors.Is(err, engine.ErrGameFinished):
			s.conflict(w, "game already finished; too late to observe")
		case errors.Is(err, engine.ErrAlreadyObserved):
			s.conflict(w, "pressure already observed for this game")
		default:
			s.writeError(w, err)
		}
		return
	}
	info, err := s.reg.Info(gameID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, gameResponse(info))
}

func (s *Server) finishGame(w http.ResponseWriter, r *http.Request, gameID int64) {
	out, err := s.reg.FinishGame(r.Context(), gameID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrGameFinished):
			s.conflict(w, "game already finished; rewards were distributed once")
		case errors.Is(err, engine.ErrInvalidStage):
			s.conflict(w, "game is still open; close it and observe the pressure first")
		case errors.Is(err, engine.ErrNoGuesses):
			s.conflict(w, "no one made guesses; nothing to reward")
		case errors.Is(err, engine.ErrNoObservation):
			s.conflict(w, "no pressure observation recorded yet")
		default:
			s.writeError(w, err)
		}
		return
	}

	if s.OnGameFinished != nil {
		s.OnGameFinished()
	}
	resp := dto.FinishResponse{
		GameID:       out.GameID,
		Observed:     out.Observed,
		Participants: out.Participants,
		NoWinner:     out.NoWinner,
		Direction:    out.Direction,
		Board:        boardResponse(out.Board),
	}
	ev := events.GameFinished{
		GameID:    out.GameID,
		Observed:  out.Observed,
		NoWinner:  out.NoWinner,
		Direction: out.Direction,
	}
	for _, rk := range out.Rankings {
		resp.Rankings = append(resp.Rankings, dto.RankingEntryResponse{
			UserID:  rk.UserID,
			Name:    rk.Name,
			Value:   rk.Value,
			Error:   rk.Error,
			Wagered: rk.Wagered,
			Reward:  rk.Reward,
		})
		ev.Rankings = append(ev.Rankings, events.RankedGuess{
			UserID:  rk.UserID,
			Value:   rk.Value,
			Error:   rk.Error,
			Wagered: rk.Wagered,
			Reward:  rk.Reward,
		})
		if rk.Reward > 0 && s.OnRewardPaid != nil {
			s.OnRewardPaid(rk.Reward)
		}
	}
	_ = s.publ.PublishGameFinished(r.Context(), ev)

	writeJSON(w, resp)
}

func (s *Server) board(w http.ResponseWriter, r *http.Request, gameID int64) {
	b, err := s.reg.Board(r.Context(), gameID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, *boardResponse(&b))
}

// writeError mapeia erros de domínio pra status HTTP. Nada daqui derruba o serviço.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrGameNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, engine.ErrInvalidStage),
		errors.Is(err, engine.ErrGameFinished),
		errors.Is(err, engine.ErrNoGuesses),
		errors.Is(err, engine.ErrNoObservation),
		errors.Is(err, engine.ErrAlreadyObserved),
		errors.Is(err, engine.ErrInsufficientFunds):
		w.WriteHeader(http.StatusConflict)
	default:
		s.log.Error("command failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
	writeJSON(w, dto.ErrorResponse{Error: err.Error()})
}

func (s *Server) conflict(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusConflict)
	writeJSON(w, dto.ErrorResponse{Error: msg})
}

func gameResponse(info engine.GameInfo) dto.GameResponse {
	return dto.GameResponse{
		GameID:      info.ID,
		CycloneTime: info.CycloneTime,
		CloseTime:   info.CloseTime,
		Stage:       string(info.Stage),
		Observed:    info.Observed,
		GuessCount:  info.GuessCount,
	}
}

func boardResponse(b *engine.Board) *dto.BoardResponse {
	if b == nil {
		return nil
	}
	resp := &dto.BoardResponse{
		GameID:   b.GameID,
		Final:    b.Final,
		Observed: b.Observed,
		Entries:  make([]dto.BoardEntryResponse, 0, len(b.Entries)),
	}
	if b.Observed == nil {
		avg := b.Average
		resp.Average = &avg
	}
	for _, e := range b.Entries {
		resp.Entries = append(resp.Entries, dto.BoardEntryResponse{
			UserID: e.UserID,
			Name:   e.Name,
			Value:  e.Value,
			Error:  e.Error,
		})
	}
	return resp
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
