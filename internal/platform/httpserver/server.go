package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	decisionboardengine "wayfarer/contexts/trip-coordination/decision-board-engine"
	boarderrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
	boardhttp "wayfarer/contexts/trip-coordination/decision-board-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "wayfarer/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	boards decisionboardengine.Module
}

func New(boards decisionboardengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		boards: boards,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/trips/{trip_id}/boards", s.handleCreateBoard)
	s.mux.HandleFunc("GET /api/v1/boards/{board_id}", s.handleGetBoard)
	s.mux.HandleFunc("POST /api/v1/boards/{board_id}/open-voting", s.handleOpenVoting)
	s.mux.HandleFunc("POST /api/v1/boards/{board_id}/votes", s.handleSubmitVote)
	s.mux.HandleFunc("GET /api/v1/boards/{board_id}/consensus", s.handleCheckConsensus)
	s.mux.HandleFunc("POST /api/v1/boards/{board_id}/force-decision", s.handleForceDecision)
	s.mux.HandleFunc("POST /api/v1/boards/{board_id}/cancel", s.handleCancelBoard)
	s.mux.HandleFunc("GET /api/v1/boards/{board_id}/summary", s.handleBoardSummary)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeBoardError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req boardhttp.CreateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBoardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.boards.Handler.CreateBoardHandler(r.Context(), r.PathValue("trip_id"), userID, req)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	resp, err := s.boards.Handler.GetBoardHandler(r.Context(), r.PathValue("board_id"))
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenVoting(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeBoardError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.boards.Handler.OpenVotingHandler(r.Context(), r.PathValue("board_id"), userID)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeBoardError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req boardhttp.SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBoardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.boards.Handler.SubmitVoteHandler(r.Context(), r.PathValue("board_id"), userID, req)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCheckConsensus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.boards.Handler.CheckConsensusHandler(r.Context(), r.PathValue("board_id"))
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleForceDecision(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeBoardError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req boardhttp.ForceDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBoardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.boards.Handler.ForceDecisionHandler(r.Context(), r.PathValue("board_id"), userID, req)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelBoard(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeBoardError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.boards.Handler.CancelBoardHandler(r.Context(), r.PathValue("board_id"), userID)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBoardSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.boards.Handler.BoardSummaryHandler(r.Context(), r.PathValue("board_id"))
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeBoardDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, boarderrors.ErrInvalidInput):
		writeBoardError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, boarderrors.ErrBoardNotFound):
		writeBoardError(w, http.StatusNotFound, "board_not_found", err.Error())
	case errors.Is(err, boarderrors.ErrOptionNotFound):
		writeBoardError(w, http.StatusNotFound, "option_not_found", err.Error())
	case errors.Is(err, boarderrors.ErrBoardExists):
		writeBoardError(w, http.StatusConflict, "active_board_exists", err.Error())
	case errors.Is(err, boarderrors.ErrDuplicateVote):
		writeBoardError(w, http.StatusConflict, "duplicate_vote", err.Error())
	case errors.Is(err, boarderrors.ErrNotEligible),
		errors.Is(err, boarderrors.ErrNotOrganizer):
		writeBoardError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, boarderrors.ErrBoardNotOpen),
		errors.Is(err, boarderrors.ErrVotingClosed):
		writeBoardError(w, http.StatusPreconditionFailed, "precondition_failed", err.Error())
	case errors.Is(err, boarderrors.ErrBusy):
		writeBoardError(w, http.StatusServiceUnavailable, "busy", err.Error())
	default:
		writeBoardError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBoardError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, boardhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func callerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
