package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aisleworks/vendor-research/internal/jobs"
	"github.com/aisleworks/vendor-research/internal/model"
	"github.com/aisleworks/vendor-research/internal/store"
)

type researchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"userId"`
}

type researchAccepted struct {
	JobID string `json:"jobId"`
}

// handleResearch triggers a research run. By default the run goes onto
// the job queue and the response is a 202 with a job ID to poll; with
// ?sync=true the run executes inline and returns the full result.
func handleResearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req researchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Query == "" || req.UserID == "" {
			writeError(w, http.StatusBadRequest, "query and userId are required")
			return
		}

		if r.URL.Query().Get("sync") == "true" {
			result, err := deps.Pipeline.Run(r.Context(), req.Query, req.UserID)
			if err != nil {
				writeError(w, http.StatusBadGateway, "research failed: %v", err)
				return
			}
			writeJSON(w, http.StatusOK, result)
			return
		}

		jobID, err := deps.Queue.Submit(func(ctx context.Context) (any, error) {
			return deps.Pipeline.Run(ctx, req.Query, req.UserID)
		})
		if errors.Is(err, jobs.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "research queue is full, retry later")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not queue research: %v", err)
			return
		}

		zap.L().Info("research queued",
			zap.String("job_id", jobID),
			zap.String("user_id", req.UserID),
		)
		writeJSON(w, http.StatusAccepted, researchAccepted{JobID: jobID})
	}
}

func handleResearchStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		job, ok := deps.Queue.Get(jobID)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown job %q", jobID)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

// handleListUserVendors resolves the user's vendor-ID set into records.
// Dangling IDs are skipped rather than failing the listing.
func handleListUserVendors(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		user, err := deps.Store.GetUser(r.Context(), userID)
		if err != nil {
			writeStoreError(w, err, "user %q", userID)
			return
		}

		vendors := make([]model.VendorRecord, 0, len(user.VendorIDs))
		for _, id := range user.VendorIDs {
			v, err := deps.Store.GetVendorByID(r.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				zap.L().Warn("user references missing vendor",
					zap.String("user_id", userID),
					zap.String("vendor_id", id),
				)
				continue
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "vendor lookup failed: %v", err)
				return
			}
			vendors = append(vendors, *v)
		}
		writeJSON(w, http.StatusOK, vendors)
	}
}

func handleRelevantVendors(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		vendors, err := deps.Pipeline.RankRelevantVendors(r.Context(), userID)
		if err != nil {
			writeStoreError(w, err, "rank vendors for user %q", userID)
			return
		}
		if vendors == nil {
			vendors = []model.VendorRecord{}
		}
		writeJSON(w, http.StatusOK, vendors)
	}
}

func handleToggleBooking(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		vendorID := chi.URLParam(r, "vendorID")

		result, err := deps.Bookings.Toggle(r.Context(), userID, vendorID)
		if err != nil {
			writeStoreError(w, err, "toggle booking")
			return
		}

		// A category conflict is a structured rejection, not an HTTP
		// error; the client reads the message code off the 200 body.
		writeJSON(w, http.StatusOK, result)
	}
}

type cancelResponse struct {
	Removed bool `json:"removed"`
}

func handleCancelBooking(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		vendorID := chi.URLParam(r, "vendorID")

		removed, err := deps.Bookings.Cancel(r.Context(), userID, vendorID)
		if err != nil {
			writeStoreError(w, err, "cancel booking")
			return
		}
		writeJSON(w, http.StatusOK, cancelResponse{Removed: removed})
	}
}

func writeStoreError(w http.ResponseWriter, err error, format string, args ...any) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, format+": not found", args...)
		return
	}
	writeError(w, http.StatusInternalServerError, format+": %v", append(args, err)...)
}
