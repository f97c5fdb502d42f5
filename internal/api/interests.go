package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/happyhourhub/backend/internal/auth"
	"github.com/happyhourhub/backend/internal/db"
	apperrors "github.com/happyhourhub/backend/internal/errors"
	"github.com/happyhourhub/backend/internal/logger"
	"github.com/happyhourhub/backend/internal/metrics"
)

type CreateInterestRequest struct {
	HappyHourID int64 `json:"happy_hour_id"`
}

type InterestResponse struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	HappyHourID int64     `json:"happyHourId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SavedHappyHourResponse is one entry of a user's saved list.
type SavedHappyHourResponse struct {
	InterestID int64             `json:"interestId"`
	SavedAt    time.Time         `json:"savedAt"`
	HappyHour  HappyHourResponse `json:"happyHour"`
}

// InterestHandlers contains handlers for the authenticated interest endpoints.
type InterestHandlers struct {
	interestRepo *db.InterestRepository
	listingRepo  *db.ListingRepository
	collector    *metrics.Collector
	log          *logger.Logger
}

func NewInterestHandlers(interestRepo *db.InterestRepository, listingRepo *db.ListingRepository, collector *metrics.Collector) *InterestHandlers {
	return &InterestHandlers{
		interestRepo: interestRepo,
		listingRepo:  listingRepo,
		collector:    collector,
		log:          logger.Default().WithComponent("interests"),
	}
}

// Create handles POST /api/interests. The existence and membership checks
// give friendly errors; the unique constraint settles concurrent duplicates.
func (h *InterestHandlers) Create(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthenticated("Authentication required. Please log in."))
		return
	}

	var req CreateInterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("Invalid request body"))
		return
	}

	if req.HappyHourID == 0 {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("happy_hour_id is required"))
		return
	}

	exists, err := h.listingRepo.Exists(r.Context(), req.HappyHourID)
	if err != nil {
		h.log.Error(r.Context(), "failed to check happy hour", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to check happy hour").WithCause(err))
		return
	}
	if !exists {
		apperrors.WriteError(w, requestID, apperrors.HappyHourNotFound())
		return
	}

	interest, err := h.interestRepo.Create(r.Context(), userCtx.ID, req.HappyHourID)
	if err != nil {
		if errors.Is(err, db.ErrInterestExists) {
			h.collector.RecordSaveConflict()
			apperrors.WriteError(w, requestID, apperrors.AlreadySaved())
			return
		}
		h.log.Error(r.Context(), "failed to save interest", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to save interest").WithCause(err))
		return
	}

	h.collector.RecordSave()
	body := apperrors.Success(InterestResponse{
		ID:          interest.ID,
		UserID:      interest.UserID.String(),
		HappyHourID: interest.HappyHourID,
		CreatedAt:   interest.CreatedAt,
	})
	body.Message = "Happy hour saved to your interests"
	apperrors.WriteJSON(w, requestID, http.StatusCreated, body)
}

// List handles GET /api/interests, newest save first.
func (h *InterestHandlers) List(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthenticated("Authentication required. Please log in."))
		return
	}

	saves, err := h.interestRepo.ListByUser(r.Context(), userCtx.ID)
	if err != nil {
		h.log.Error(r.Context(), "failed to list interests", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to list interests").WithCause(err))
		return
	}

	data := make([]SavedHappyHourResponse, 0, len(saves))
	for _, s := range saves {
		data = append(data, SavedHappyHourResponse{
			InterestID: s.InterestID,
			SavedAt:    s.SavedAt,
			HappyHour:  happyHourResponse(s.HappyHour),
		})
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, apperrors.SuccessList(len(data), data))
}

// Delete handles DELETE /api/interests/{id}. A row owned by someone else
// reads the same as a missing row.
func (h *InterestHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthenticated("Authentication required. Please log in."))
		return
	}

	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("Invalid interest id"))
		return
	}

	if err := h.interestRepo.Delete(r.Context(), id, userCtx.ID); err != nil {
		if errors.Is(err, db.ErrInterestNotFound) {
			apperrors.WriteError(w, requestID, apperrors.InterestNotFound())
			return
		}
		h.log.Error(r.Context(), "failed to delete interest", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to delete interest").WithCause(err))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, apperrors.SuccessMessage("Interest removed successfully"))
}
