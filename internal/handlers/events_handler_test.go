package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kumbara/internal/ledger"
	"kumbara/internal/services"
)

func TestEventsHandler_Stream(t *testing.T) {
	ch := make(chan services.Event, 2)
	ch <- services.Event{Type: services.EventTypeLedger, Ledger: &ledger.Event{Kind: ledger.EventAdded, IDs: []string{"a"}, Version: 1}}
	updated := time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)
	ch <- services.Event{Type: services.EventTypePrices, LastUpdate: &updated}
	close(ch)

	cancelled := false
	svc := &mockTrackerService{
		subscribeFn: func(int) (<-chan services.Event, func()) {
			return ch, func() { cancelled = true }
		},
	}
	r := gin.New()
	r.GET("/events", NewEventsHandler(svc, time.Hour).Stream)

	req := httptest.NewRequest(http.MethodGet, "/events", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "event:ledger") {
		t.Errorf("expected ledger event, got %q", body)
	}
	if !strings.Contains(body, "event:prices") {
		t.Errorf("expected prices event, got %q", body)
	}
	if !strings.Contains(body, `"kind":"added"`) {
		t.Errorf("expected ledger payload, got %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !cancelled {
		t.Error("expected subscription to be cancelled")
	}
}
