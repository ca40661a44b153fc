// Package testutil provides testing utilities for the animelist pipeline.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is one request received by the mock server.
type RecordedRequest struct {
	Path      string
	Page      string
	UserAgent string
	At        time.Time
}

// MockJikan is a configurable mock Jikan server for testing.
type MockJikan struct {
	server    *httptest.Server
	mu        sync.RWMutex
	responses map[string]MockResponse
	requests  []RecordedRequest
}

// NewMockJikan creates a new mock Jikan server. Unconfigured season pages
// answer with an empty data list.
func NewMockJikan() *MockJikan {
	mock := &MockJikan{
		responses: make(map[string]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")

		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Path:      r.URL.Path,
			Page:      page,
			UserAgent: r.Header.Get("User-Agent"),
			At:        time.Now(),
		})
		resp, exists := mock.responses[pageKey(r.URL.Path, page)]
		mock.mu.Unlock()

		if !exists {
			resp = NewPageResponse()
		}
		writeResponse(w, resp)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockJikan) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockJikan) Close() {
	m.server.Close()
}

// SetSeasonPage configures the response for one 1-based season page.
func (m *MockJikan) SetSeasonPage(year int, season string, page int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/v4/seasons/%d/%s", year, season)
	m.responses[pageKey(path, fmt.Sprintf("%d", page))] = resp
}

// Requests returns a copy of the received requests in arrival order.
func (m *MockJikan) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockJikan) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

func pageKey(path, page string) string {
	return path + "?page=" + page
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewPageResponse creates a 200 OK season page carrying the given records.
func NewPageResponse(records ...map[string]any) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       SeasonPageBody(records...),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"status":429,"type":"RateLimitException","message":"You are being rate limited"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"status":500,"type":"InternalException"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// SeasonPageBody renders a season page envelope around records.
func SeasonPageBody(records ...map[string]any) string {
	if records == nil {
		records = []map[string]any{}
	}
	body, err := json.Marshal(map[string]any{
		"pagination": map[string]any{
			"last_visible_page": 1,
			"has_next_page":     false,
			"current_page":      1,
			"items": map[string]any{
				"count":    len(records),
				"total":    len(records),
				"per_page": 25,
			},
		},
		"data": records,
	})
	if err != nil {
		panic(err)
	}
	return string(body)
}

// Named builds a {mal_id, type, name, url} list element.
func Named(id int, kind, name string) map[string]any {
	return map[string]any{
		"mal_id": id,
		"type":   kind,
		"name":   name,
		"url":    fmt.Sprintf("https://myanimelist.net/anime/%s/%d", kind, id),
	}
}

// AnimeRecord returns a complete catalog entry in the shape the seasons
// endpoint returns. Callers override or delete keys to build edge cases.
func AnimeRecord(malID int, title string) map[string]any {
	image := func(ext string) map[string]any {
		base := fmt.Sprintf("https://cdn.myanimelist.net/images/anime/%d", malID)
		return map[string]any{
			"image_url":       base + "." + ext,
			"small_image_url": base + "t." + ext,
			"large_image_url": base + "l." + ext,
		}
	}
	dateParts := func(day, month, year any) map[string]any {
		return map[string]any{"day": day, "month": month, "year": year}
	}

	return map[string]any{
		"mal_id": malID,
		"url":    fmt.Sprintf("https://myanimelist.net/anime/%d", malID),
		"images": map[string]any{
			"jpg":  image("jpg"),
			"webp": image("webp"),
		},
		"trailer": map[string]any{
			"youtube_id": nil,
			"url":        nil,
			"embed_url":  nil,
			"images": map[string]any{
				"image_url":         nil,
				"small_image_url":   nil,
				"medium_image_url":  nil,
				"large_image_url":   nil,
				"maximum_image_url": nil,
			},
		},
		"approved":       true,
		"titles":         []any{map[string]any{"type": "Default", "title": title}},
		"title":          title,
		"title_english":  title,
		"title_japanese": nil,
		"title_synonyms": []any{},
		"type":           "TV",
		"source":         "Manga",
		"episodes":       12,
		"status":         "Finished Airing",
		"airing":         false,
		"aired": map[string]any{
			"from": "2020-01-10T00:00:00+00:00",
			"to":   "2020-03-27T00:00:00+00:00",
			"prop": map[string]any{
				"from": dateParts(10, 1, 2020),
				"to":   dateParts(27, 3, 2020),
			},
			"string": "Jan 10, 2020 to Mar 27, 2020",
		},
		"duration":   "24 min per ep",
		"rating":     "PG-13 - Teens 13 or older",
		"score":      7.5,
		"scored_by":  1000,
		"rank":       500,
		"popularity": 800,
		"members":    50000,
		"favorites":  300,
		"synopsis":   "Synopsis of " + title,
		"background": nil,
		"season":     "winter",
		"year":       2020,
		"broadcast": map[string]any{
			"day":      "Fridays",
			"time":     "23:00",
			"timezone": "Asia/Tokyo",
			"string":   "Fridays at 23:00 (JST)",
		},
		"producers":       []any{Named(17, "producer", "Aniplex")},
		"licensors":       []any{},
		"studios":         []any{Named(43, "anime", "ufotable")},
		"genres":          []any{Named(1, "anime", "Action"), Named(8, "anime", "Drama")},
		"explicit_genres": []any{},
		"themes":          []any{},
		"demographics":    []any{Named(27, "anime", "Shounen")},
	}
}
