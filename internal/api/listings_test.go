package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/happyhourhub/backend/internal/db"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantTag string
		wantDay *int
		// dates and restaurant ids are asserted through presence to keep
		// the table readable
		wantDate       string
		wantRestaurant int64
	}{
		{
			name:  "no filters",
			query: "",
		},
		{
			name:    "tag only",
			query:   "tag=wine",
			wantTag: "wine",
		},
		{
			name:    "day only",
			query:   "day=5",
			wantDay: intPtr(5),
		},
		{
			name:    "sunday is zero",
			query:   "day=0",
			wantDay: intPtr(0),
		},
		{
			name:  "malformed day is dropped",
			query: "day=friday",
		},
		{
			name:     "date only",
			query:    "date=2025-12-26",
			wantDate: "2025-12-26",
		},
		{
			name:  "malformed date is dropped",
			query: "date=26-12-2025",
		},
		{
			name:           "restaurant only",
			query:          "restaurant_id=3",
			wantRestaurant: 3,
		},
		{
			name:  "malformed restaurant is dropped",
			query: "restaurant_id=abc",
		},
		{
			name:           "all filters",
			query:          "tag=beer&day=2&date=2025-06-01&restaurant_id=7",
			wantTag:        "beer",
			wantDay:        intPtr(2),
			wantDate:       "2025-06-01",
			wantRestaurant: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/happy-hours?"+tt.query, nil)
			filters := parseFilters(req)

			if filters.Tag != tt.wantTag {
				t.Errorf("expected tag %q, got %q", tt.wantTag, filters.Tag)
			}

			if tt.wantDay == nil {
				if filters.Day != nil {
					t.Errorf("expected no day filter, got %d", *filters.Day)
				}
			} else if filters.Day == nil || *filters.Day != *tt.wantDay {
				t.Errorf("expected day %d, got %v", *tt.wantDay, filters.Day)
			}

			if tt.wantDate == "" {
				if filters.Date != nil {
					t.Errorf("expected no date filter, got %v", *filters.Date)
				}
			} else if filters.Date == nil || filters.Date.Format("2006-01-02") != tt.wantDate {
				t.Errorf("expected date %s, got %v", tt.wantDate, filters.Date)
			}

			if tt.wantRestaurant == 0 {
				if filters.RestaurantID != nil {
					t.Errorf("expected no restaurant filter, got %d", *filters.RestaurantID)
				}
			} else if filters.RestaurantID == nil || *filters.RestaurantID != tt.wantRestaurant {
				t.Errorf("expected restaurant %d, got %v", tt.wantRestaurant, filters.RestaurantID)
			}
		})
	}
}

func TestHappyHourResponse(t *testing.T) {
	day := 4
	date := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("recurring listing", func(t *testing.T) {
		resp := happyHourResponse(db.HappyHour{
			ID:         1,
			Title:      "Thirsty Thursday",
			DayOfWeek:  &day,
			StartTime:  "16:00:00",
			EndTime:    "18:00:00",
			Tags:       []string{"beer", "wings"},
			CreatedAt:  created,
			Restaurant: db.Restaurant{ID: 2, Name: "The Local"},
		})

		if resp.DayOfWeek == nil || *resp.DayOfWeek != 4 {
			t.Errorf("expected dayOfWeek 4, got %v", resp.DayOfWeek)
		}
		if resp.SpecificDate != nil {
			t.Errorf("expected no specificDate, got %q", *resp.SpecificDate)
		}
		if resp.Restaurant.Name != "The Local" {
			t.Errorf("expected restaurant name, got %q", resp.Restaurant.Name)
		}
	})

	t.Run("one-off listing formats the date", func(t *testing.T) {
		resp := happyHourResponse(db.HappyHour{
			ID:           2,
			Title:        "NYE Countdown",
			SpecificDate: &date,
			CreatedAt:    created,
		})

		if resp.DayOfWeek != nil {
			t.Errorf("expected no dayOfWeek, got %d", *resp.DayOfWeek)
		}
		if resp.SpecificDate == nil || *resp.SpecificDate != "2025-12-31" {
			t.Errorf("expected specificDate 2025-12-31, got %v", resp.SpecificDate)
		}
	})

	t.Run("json field names", func(t *testing.T) {
		data, err := json.Marshal(happyHourResponse(db.HappyHour{
			ID:           3,
			SpecificDate: &date,
			CreatedAt:    created,
		}))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		for _, key := range []string{"id", "dayOfWeek", "specificDate", "startTime", "endTime", "tags", "imageUrl", "createdAt", "restaurant"} {
			if _, ok := fields[key]; !ok {
				t.Errorf("expected field %q in response", key)
			}
		}
		// A recurring listing's absent date must still appear as null, not
		// vanish; clients branch on it
		if string(fields["dayOfWeek"]) != "null" {
			t.Errorf("expected dayOfWeek null, got %s", fields["dayOfWeek"])
		}
	})
}

func TestWriteRendered(t *testing.T) {
	rec := httptest.NewRecorder()
	writeRendered(rec, "req-42", http.StatusOK, []byte(`{"status":"success"}`))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected request id header, got %q", got)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected json content type, got %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != `{"status":"success"}` {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	h := NewListingHandlers(nil, nil, newTestCollector())

	req := httptest.NewRequest(http.MethodGet, "/api/happy-hours/abc", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	h.GetByID(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	assertErrorEnvelope(t, rec)
}

func intPtr(v int) *int { return &v }

func assertErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["status"] != "error" {
		t.Errorf("expected status error, got %v", body["status"])
	}
}
