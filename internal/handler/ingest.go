package handler

import (
	"errors"
	"net/http"

	"github.com/osse101/MentionBot_Go/internal/domain"
	"github.com/osse101/MentionBot_Go/internal/engine"
	"github.com/osse101/MentionBot_Go/internal/logger"
	"github.com/osse101/MentionBot_Go/internal/scheduler"
)

// TriggerResponse acknowledges that a manual cycle was accepted.
// The cycle runs in the background; poll the status endpoint for outcome.
type TriggerResponse struct {
	Status string `json:"status"`
}

// HandleTriggerIngestion starts a cycle out of band of the schedule.
// Returns 409 when one is already in flight.
func HandleTriggerIngestion(sched *scheduler.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sched.TriggerManual(r.Context()); err != nil {
			if errors.Is(err, domain.ErrRunnerBusy) {
				respondError(w, http.StatusConflict, ErrMsgCycleBusy)
				return
			}
			logger.FromContext(r.Context()).Error(LogMsgTriggerFailed, "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
			return
		}

		respondJSON(w, http.StatusAccepted, TriggerResponse{Status: "started"})
	}
}

// HandleIngestionStatus reports the engine's checkpoint and runtime flags.
func HandleIngestionStatus(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := eng.Status()
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgStatusFailed, "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
			return
		}

		respondJSON(w, http.StatusOK, status)
	}
}
