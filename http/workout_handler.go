package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"loan-workout/domain"
	"loan-workout/service"
)

type WorkoutHandler struct {
	workouts    *service.WorkoutService
	options     *service.OptionService
	suggestions *service.SuggestionService
	log         *logrus.Logger
}

func NewWorkoutHandler(
	workouts *service.WorkoutService,
	options *service.OptionService,
	suggestions *service.SuggestionService,
	log *logrus.Logger,
) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts, options: options, suggestions: suggestions, log: log}
}

func (h *WorkoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	var input OpenWorkoutRequest
	if !decodeJSON(w, r, h.log, &input) {
		return
	}
	view, err := h.workouts.Open(r.Context(), input.Loan, input.Request)
	h.respond(w, http.StatusCreated, view, err)
}

func (h *WorkoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.workouts.Get(mux.Vars(r)["id"])
	h.respond(w, http.StatusOK, view, err)
}

func (h *WorkoutHandler) EditInputs(w http.ResponseWriter, r *http.Request) {
	var patch domain.InputsPatch
	if !decodeJSON(w, r, h.log, &patch) {
		return
	}
	view, err := h.workouts.Edit(mux.Vars(r)["id"], patch)
	h.respond(w, http.StatusOK, view, err)
}

func (h *WorkoutHandler) ResolveDiscrepancy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.workouts.Resolve(vars["id"], domain.DiscrepancyAction(vars["action"]))
	h.respond(w, http.StatusOK, view, err)
}

func (h *WorkoutHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	view, err := h.options.Create(mux.Vars(r)["id"])
	h.respond(w, http.StatusCreated, view, err)
}

func (h *WorkoutHandler) SaveOption(w http.ResponseWriter, r *http.Request) {
	view, err := h.options.Save(r.Context(), mux.Vars(r)["id"])
	h.respond(w, http.StatusOK, view, err)
}

func (h *WorkoutHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	optionID, ok := optionIDFrom(w, r)
	if !ok {
		return
	}
	view, err := h.options.Select(mux.Vars(r)["id"], optionID)
	h.respond(w, http.StatusOK, view, err)
}

func (h *WorkoutHandler) RemoveOption(w http.ResponseWriter, r *http.Request) {
	optionID, ok := optionIDFrom(w, r)
	if !ok {
		return
	}
	view, err := h.options.Remove(r.Context(), mux.Vars(r)["id"], optionID)
	h.respond(w, http.StatusOK, view, err)
}

func (h *WorkoutHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var input domain.SuggestionInput
	if r.ContentLength != 0 && !decodeJSON(w, r, h.log, &input) {
		return
	}
	result, err := h.suggestions.Suggest(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result, h.log)
}

func (h *WorkoutHandler) respond(w http.ResponseWriter, status int, view service.SessionView, err error) {
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, status, newSessionResponse(view), h.log)
}

func (h *WorkoutHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("workout request failed")
		http.Error(w, "internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrOptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrOptionLimit), errors.Is(err, service.ErrNoDiscrepancy),
		errors.Is(err, service.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrUnknownAction):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func optionIDFrom(w http.ResponseWriter, r *http.Request) (int, bool) {
	optionID, err := strconv.Atoi(mux.Vars(r)["optionID"])
	if err != nil || optionID < 0 {
		http.Error(w, "invalid option id", http.StatusBadRequest)
		return 0, false
	}
	return optionID, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, log *logrus.Logger, dst any) bool {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.WithError(err).Debug("invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSON encodes into a buffer first so a failed encode never leaves a
// half-written 200 behind.
func writeJSON(w http.ResponseWriter, status int, v any, log *logrus.Logger) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}
