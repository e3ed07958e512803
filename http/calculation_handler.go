package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"loan-workout/service"
)

type CalculationHandler struct {
	service *service.CalculationService
	log     *logrus.Logger
}

func NewCalculationHandler(service *service.CalculationService, log *logrus.Logger) *CalculationHandler {
	return &CalculationHandler{service: service, log: log}
}

func (h *CalculationHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var input service.CalculationRequest
	if !decodeJSON(w, r, h.log, &input) {
		return
	}

	metrics, err := h.service.Calculate(r.Context(), input)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.WithError(err).Error("calculation failed")
			http.Error(w, "internal server error", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, newMetricsResponse(metrics), h.log)
}
