package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	tests := []struct {
		handler        http.HandlerFunc
		name           string
		expectedStatus int
	}{
		{
			name: "200 OK",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("success"))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "401 Unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "500 Internal Server Error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "implicit 200 without WriteHeader",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("ok"))
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := LoggingMiddleware(discardLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/signin", http.NoBody)
			w := httptest.NewRecorder()

			mw(tt.handler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestLoggingMiddleware_LogsRequest(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	mw := LoggingMiddleware(logger)
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", http.NoBody)
	w := httptest.NewRecorder()
	mw(http.HandlerFunc(handler)).ServeHTTP(w, req)

	out := buf.String()
	assert.Contains(t, out, "HTTP request")
	assert.Contains(t, out, "/api/v1/auth/signup")
	assert.Contains(t, out, "status=200")
}

func TestLoggingWithSkip(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	mw := LoggingWithSkip(logger, []string{"/api/v1/health"})
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	// Пропускаемый путь не попадает в лог
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody)
	mw(http.HandlerFunc(handler)).ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, buf.String())

	// Остальные — попадают
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", http.NoBody)
	mw(http.HandlerFunc(handler)).ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), "/api/v1/auth/signin")
}
