// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type Handlers struct{ Svc *app.ReviewService }

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Cached  *bool  `json:"cached,omitempty"`
	Origin  string `json:"origin,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api/reviews", func(r chi.Router) {
		r.Get("/all", h.getAllReviews)
		r.Get("/hostaway", h.getHostawayReviews)
		r.Get("/stats", h.getStats)
		r.Get("/listing/{id}", h.getReviewsByListing)
		r.Get("/approved", h.getApprovedReviews)
		r.Patch("/{id}/approval", h.updateApproval)

		r.Get("/google/search", h.searchPlaces)
		r.Get("/google/properties", h.searchProperties)
		r.Get("/google/{placeId}", h.importPlaceReviews)
		r.Post("/google/{placeId}", h.importPlaceReviews)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeWithETag serves v with a weak ETag, short-circuiting to 304 when the
// client already holds this version.
func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) getAllReviews(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.GetAllReviews(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch all reviews")
		return
	}
	writeWithETag(w, r, apiResponse{Success: true, Data: snap.Reviews, Origin: string(snap.Origin)})
}

func (h *Handlers) getHostawayReviews(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.GetHostawayReviews(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	cached := snap.Origin == domain.OriginCache
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: snap.Reviews, Cached: &cached, Origin: string(snap.Origin)})
}

func (h *Handlers) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}
	writeWithETag(w, r, apiResponse{Success: true, Data: stats})
}

func (h *Handlers) getReviewsByListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")
	reviews, err := h.Svc.GetReviewsByListing(r.Context(), listingID)
	if err != nil {
		if errors.Is(err, app.ErrEmptyListingID) {
			writeError(w, http.StatusBadRequest, "Listing ID is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews for listing")
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: reviews})
}

func (h *Handlers) getApprovedReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Svc.GetApprovedReviews(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch approved reviews")
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: reviews})
}

func (h *Handlers) updateApproval(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "id")

	var body struct {
		IsApproved *bool `json:"isApproved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsApproved == nil {
		writeError(w, http.StatusBadRequest, "isApproved must be a boolean")
		return
	}

	if err := h.Svc.SetApproval(r.Context(), reviewID, *body.IsApproved); err != nil {
		if errors.Is(err, app.ErrEmptyReviewID) {
			writeError(w, http.StatusBadRequest, "Review ID is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update review approval")
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]any{
		"reviewId":   reviewID,
		"isApproved": *body.IsApproved,
	}})
}

func (h *Handlers) searchPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}
	places, err := h.Svc.SearchPlaces(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search places")
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: places})
}

func (h *Handlers) searchProperties(w http.ResponseWriter, r *http.Request) {
	places, err := h.Svc.SearchProperties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search properties")
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: places})
}

func (h *Handlers) importPlaceReviews(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeId")
	snap, err := h.Svc.ImportPlaceReviews(r.Context(), placeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import place reviews")
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    snap.Reviews,
		Origin:  string(snap.Origin),
		Message: "Imported " + strconv.Itoa(len(snap.Reviews)) + " reviews successfully",
	})
}
