package boardfeed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobherald/internal/domain"
)

func testClient(baseURL string) *Client {
	return New(Config{
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSearchPostings_QueryAndTransform(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"search_term":    q.Get("search_term"),
			"location":       q.Get("location"),
			"results_wanted": q.Get("results_wanted"),
			"hours_old":      q.Get("hours_old"),
			"company_id":     q.Get("company_id"),
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"count": 3,
			"jobs": [
				{"id": "li-1", "title": "Software Engineer", "company": "Acme",
				 "company_url": "https://example.com/acme",
				 "job_url": "https://example.com/jobs/1", "location": "Remote",
				 "description": "build things"},
				{"id": "", "title": "No Identity", "company": "Ghost"},
				{"id": "li-2", "title": "Data Engineer", "company": "Globex"}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	postings, err := client.SearchPostings(context.Background(), domain.SearchQuery{
		Term:               "software engineer",
		Location:           "United States",
		ResultCap:          15,
		RecencyWindowHours: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "software engineer", gotQuery["search_term"])
	assert.Equal(t, "United States", gotQuery["location"])
	assert.Equal(t, "15", gotQuery["results_wanted"])
	assert.Equal(t, "10", gotQuery["hours_old"])
	assert.Empty(t, gotQuery["company_id"])

	// Row without a provider identity is dropped.
	require.Len(t, postings, 2)
	assert.Equal(t, "li-1", postings[0].Identity)
	assert.Equal(t, "Software Engineer", postings[0].Title)
	assert.Equal(t, "https://example.com/jobs/1", postings[0].ApplicationURL)
	require.NotNil(t, postings[0].Description)
	assert.Equal(t, "build things", *postings[0].Description)
	assert.Nil(t, postings[1].Description)
}

func TestSearchPostings_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 0, "jobs": []}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	postings, err := client.SearchPostings(context.Background(), domain.SearchQuery{
		Term: "intern", Location: "United States", ResultCap: 5,
	})

	require.NoError(t, err)
	assert.Empty(t, postings)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchPostings_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.SearchPostings(context.Background(), domain.SearchQuery{
		Term: "intern", Location: "United States", ResultCap: 5,
	})

	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}
