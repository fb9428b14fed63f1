package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/personal-calendar/internal/application"
	"github.com/example/personal-calendar/internal/metadata"
	"github.com/example/personal-calendar/internal/persistence"
	"github.com/example/personal-calendar/internal/testfixtures"
)

type memStore struct {
	saved []persistence.Document
}

func (s *memStore) Load(ctx context.Context) (persistence.Document, error) {
	return persistence.EmptyDocument(), nil
}

func (s *memStore) Save(ctx context.Context, doc persistence.Document) error {
	s.saved = append(s.saved, doc)
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ids := testfixtures.NewIDGenerator("record")
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	service := application.NewCalendarService(&memStore{}, ids.NextFunc(), clock.NowFunc(), nil)
	handler := NewCalendarHandler(service, metadata.Weekends(), nil)
	return NewRouter(RouterConfig{Calendar: handler})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCalendarHandlers_DayView(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/events",
		`{"date":"2024-03-16","title":"dentist","time_slot":"08:00-10:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/days/2024-03-16", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Date != "2024-03-16" || len(resp.Occurrences) != 1 {
		t.Fatalf("unexpected day response: %+v", resp)
	}
	if resp.Occurrences[0].Title != "dentist" || resp.Occurrences[0].TimeSlot != "08:00-10:00" {
		t.Fatalf("unexpected occurrence: %+v", resp.Occurrences[0])
	}
	// 2024-03-16 is a Saturday.
	if resp.Metadata == nil || !resp.Metadata.RestDay {
		t.Fatalf("expected weekend metadata, got %+v", resp.Metadata)
	}
}

func TestCalendarHandlers_RuleLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/rules",
		`{"date":"2024-03-01","title":"standup","pattern":{"type":"daily"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created occurrenceDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !created.Recurring || created.Pattern != "daily" {
		t.Fatalf("unexpected created rule: %+v", created)
	}

	// Exclude one day.
	rec = doJSON(t, router, http.MethodDelete, "/days/2024-03-10/occurrences/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, "/days/2024-03-10", "")
	var excluded dayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &excluded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(excluded.Occurrences) != 0 {
		t.Fatalf("expected the excluded day empty, got %+v", excluded.Occurrences)
	}

	// Truncate the series.
	rec = doJSON(t, router, http.MethodDelete, "/rules/"+created.ID+"?from=2024-04-01", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, "/days/2024-04-02", "")
	var truncated dayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &truncated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(truncated.Occurrences) != 0 {
		t.Fatalf("expected no occurrences after the cut, got %+v", truncated.Occurrences)
	}
}

func TestCalendarHandlers_DetachOccurrence(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/rules",
		`{"date":"2024-03-01","title":"standup","pattern":{"type":"daily"}}`)
	var created occurrenceDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/rules/"+created.ID+"/detach",
		`{"date":"2024-03-05","title":"standup (moved)","time_slot":"10:00-12:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var detached occurrenceDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &detached); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detached.Recurring || detached.ID == created.ID {
		t.Fatalf("expected an independent record, got %+v", detached)
	}

	rec = doJSON(t, router, http.MethodGet, "/days/2024-03-05", "")
	var resp dayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Occurrences) != 1 || resp.Occurrences[0].Title != "standup (moved)" {
		t.Fatalf("expected only the detached record on the day, got %+v", resp.Occurrences)
	}
}

func TestCalendarHandlers_ErrorMapping(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	t.Run("validation errors return 422 with field details", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/events", `{"date":"2024-03-16","title":"  "}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if _, ok := resp.Errors["title"]; !ok {
			t.Fatalf("expected a title field error, got %+v", resp)
		}
	})

	t.Run("unknown records return 404", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPut, "/rules/missing", `{"title":"x"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("malformed dates return 400", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodGet, "/days/yesterday", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("malformed bodies return 400", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/events", `{broken`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong methods return 405", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodDelete, "/events", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
			t.Fatalf("unexpected Allow header %q", allow)
		}
	})
}

func TestCalendarHandlers_Search(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/events",
		`{"date":"2024-03-16","title":"grocery run"}`)
	doJSON(t, router, http.MethodPost, "/events",
		`{"date":"2024-03-20","title":"lunch","description":"grocery list afterwards"}`)

	rec := doJSON(t, router, http.MethodGet, "/search?q=grocery", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", resp.Results)
	}
	if resp.Results[0].Date != "2024-03-16" || resp.Results[1].Date != "2024-03-20" {
		t.Fatalf("expected results ordered by date, got %+v", resp.Results)
	}

	if rec := doJSON(t, router, http.MethodGet, "/search", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing keyword, got %d", rec.Code)
	}
}

func TestCalendarHandlers_ExportICS(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/events",
		`{"date":"2024-03-16","title":"dentist","time_slot":"08:00-10:00"}`)

	rec := doJSON(t, router, http.MethodGet, "/export.ics?from=2024-03-15&to=2024-03-17", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "SUMMARY:dentist") {
		t.Fatalf("expected the event in the export\n%s", body)
	}

	if rec := doJSON(t, router, http.MethodGet, "/export.ics?from=bad&to=2024-03-17", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed dates, got %d", rec.Code)
	}
}
