package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/happyhourhub/backend/internal/auth"
	"github.com/happyhourhub/backend/internal/cache"
	"github.com/happyhourhub/backend/internal/db"
	apperrors "github.com/happyhourhub/backend/internal/errors"
	"github.com/happyhourhub/backend/internal/logger"
	"github.com/happyhourhub/backend/internal/metrics"
)

// RestaurantResponse is the nested owner identity on a happy hour.
type RestaurantResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl"`
}

// HappyHourResponse is the denormalized listing record served to clients.
type HappyHourResponse struct {
	ID           int64              `json:"id"`
	Title        string             `json:"title"`
	Tagline      string             `json:"tagline"`
	Description  string             `json:"description"`
	DayOfWeek    *int               `json:"dayOfWeek"`
	SpecificDate *string            `json:"specificDate"`
	StartTime    string             `json:"startTime"`
	EndTime      string             `json:"endTime"`
	Tags         []string           `json:"tags"`
	ImageURL     string             `json:"imageUrl"`
	CreatedAt    time.Time          `json:"createdAt"`
	Restaurant   RestaurantResponse `json:"restaurant"`
}

func happyHourResponse(hh db.HappyHour) HappyHourResponse {
	var specificDate *string
	if hh.SpecificDate != nil {
		s := hh.SpecificDate.Format("2006-01-02")
		specificDate = &s
	}

	return HappyHourResponse{
		ID:           hh.ID,
		Title:        hh.Title,
		Tagline:      hh.Tagline,
		Description:  hh.Description,
		DayOfWeek:    hh.DayOfWeek,
		SpecificDate: specificDate,
		StartTime:    hh.StartTime,
		EndTime:      hh.EndTime,
		Tags:         hh.Tags,
		ImageURL:     hh.ImageURL,
		CreatedAt:    hh.CreatedAt,
		Restaurant: RestaurantResponse{
			ID:          hh.Restaurant.ID,
			Name:        hh.Restaurant.Name,
			Address:     hh.Restaurant.Address,
			Description: hh.Restaurant.Description,
			ImageURL:    hh.Restaurant.ImageURL,
		},
	}
}

// ListingHandlers contains handlers for the public happy-hour endpoints.
type ListingHandlers struct {
	listingRepo *db.ListingRepository
	cache       *cache.Cache // nil disables caching
	collector   *metrics.Collector
	log         *logger.Logger
}

func NewListingHandlers(listingRepo *db.ListingRepository, c *cache.Cache, collector *metrics.Collector) *ListingHandlers {
	return &ListingHandlers{
		listingRepo: listingRepo,
		cache:       c,
		collector:   collector,
		log:         logger.Default().WithComponent("listings"),
	}
}

// List handles GET /api/happy-hours with optional tag, day, date and
// restaurant_id filters.
func (h *ListingHandlers) List(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	if user := auth.GetUserFromContext(r.Context()); user != nil {
		h.log.Debug(r.Context(), "browse by authenticated user", map[string]interface{}{
			"user_id": user.ID.String(),
		})
	}

	cacheKey := cache.ListingListKey(r.URL.Query().Encode())
	if h.serveCached(w, r, cacheKey) {
		return
	}

	filters := parseFilters(r)
	happyHours, err := h.listingRepo.List(r.Context(), filters)
	if err != nil {
		h.log.Error(r.Context(), "failed to list happy hours", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to list happy hours").WithCause(err))
		return
	}

	data := make([]HappyHourResponse, 0, len(happyHours))
	for _, hh := range happyHours {
		data = append(data, happyHourResponse(hh))
	}

	h.writeAndCache(w, r, requestID, http.StatusOK, apperrors.SuccessList(len(data), data), cacheKey)
}

// GetByID handles GET /api/happy-hours/{id}.
func (h *ListingHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("Invalid happy hour id"))
		return
	}

	cacheKey := cache.ListingKey(id)
	if h.serveCached(w, r, cacheKey) {
		return
	}

	hh, err := h.listingRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrHappyHourNotFound) {
			apperrors.WriteError(w, requestID, apperrors.HappyHourNotFound())
			return
		}
		h.log.Error(r.Context(), "failed to get happy hour", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to get happy hour").WithCause(err))
		return
	}

	h.writeAndCache(w, r, requestID, http.StatusOK, apperrors.Success(happyHourResponse(*hh)), cacheKey)
}

// serveCached writes a previously cached response body if one exists.
func (h *ListingHandlers) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.cache == nil {
		return false
	}

	body, ok := h.cache.Get(r.Context(), key)
	if !ok {
		h.collector.RecordCacheMiss()
		return false
	}

	h.collector.RecordCacheHit()
	writeRendered(w, apperrors.GetRequestID(r.Context()), http.StatusOK, []byte(body))
	return true
}

// writeAndCache writes the envelope and stores the rendered body for
// subsequent requests.
func (h *ListingHandlers) writeAndCache(w http.ResponseWriter, r *http.Request, requestID string, status int, body apperrors.Envelope, key string) {
	if h.cache == nil {
		apperrors.WriteJSON(w, requestID, status, body)
		return
	}

	rendered, err := json.Marshal(body)
	if err != nil {
		apperrors.WriteJSON(w, requestID, status, body)
		return
	}

	h.cache.Set(r.Context(), key, string(rendered), cache.ListingTTL)
	writeRendered(w, requestID, status, rendered)
}

// writeRendered writes an already-serialized envelope. Cached and freshly
// rendered bodies both pass through here so they carry the same headers.
func writeRendered(w http.ResponseWriter, requestID string, status int, rendered []byte) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set(apperrors.RequestIDHeader, requestID)
	}
	w.WriteHeader(status)
	w.Write(rendered)
}

// parseFilters reads the optional query filters. Absent, malformed or
// out-of-range values impose no predicate; browsing never fails on filter
// input.
func parseFilters(r *http.Request) db.Filters {
	q := r.URL.Query()
	filters := db.Filters{Tag: q.Get("tag")}

	if dayStr := q.Get("day"); dayStr != "" {
		if day, err := strconv.Atoi(dayStr); err == nil {
			filters.Day = &day
		}
	}

	if dateStr := q.Get("date"); dateStr != "" {
		if date, err := time.Parse("2006-01-02", dateStr); err == nil {
			filters.Date = &date
		}
	}

	if ridStr := q.Get("restaurant_id"); ridStr != "" {
		if rid, err := strconv.ParseInt(ridStr, 10, 64); err == nil {
			filters.RestaurantID = &rid
		}
	}

	return filters
}
