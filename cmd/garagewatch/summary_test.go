package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSummaryClient_Fetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analytics/today-summary" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bookings":3,"revenue":15000,"pendingActions":1}`))
	}))
	defer srv.Close()

	s := newSummaryClient(srv.URL+"/", 7, srv.Client())
	summary, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotQuery != "garageId=7" {
		t.Errorf("query = %q, want garageId=7", gotQuery)
	}
	if summary.Bookings != 3 || summary.Revenue != 15000 || summary.PendingActions != 1 {
		t.Errorf("summary = %+v", summary)
	}

	text := formatSummary(summary)
	for _, part := range []string{"3[::-] bookings", "$150.00", "1[::-] pending"} {
		if !strings.Contains(text, part) {
			t.Errorf("formatSummary = %q, missing %q", text, part)
		}
	}
}

func TestSummaryClient_FetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Garage not found"}`))
	}))
	defer srv.Close()

	_, err := newSummaryClient(srv.URL, 99, srv.Client()).Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch succeeded on a 404")
	}
	if !strings.Contains(err.Error(), "Garage not found") {
		t.Errorf("error = %v, want the server message", err)
	}
}
