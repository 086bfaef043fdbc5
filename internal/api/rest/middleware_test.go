package rest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRecoveryMiddleware(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(log))
	router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) {
		panic("nil map")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestLoggingMiddlewareKeepsResponse(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	handler := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantOrigin string
	}{
		{"allowed origin", []string{"https://app.fortuna.bet"}, "https://app.fortuna.bet", http.MethodGet, "https://app.fortuna.bet"},
		{"other origin", []string{"https://app.fortuna.bet"}, "https://evil.example", http.MethodGet, ""},
		{"wildcard", []string{"*"}, "https://anywhere.example", http.MethodGet, "*"},
		{"no config", nil, "https://anywhere.example", http.MethodGet, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/picks/evaluate", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			CORSMiddleware(tt.origins)(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSPreflightThroughRouter(t *testing.T) {
	reached := false
	router := mux.NewRouter()
	router.Use(CORSMiddleware([]string{"https://app.fortuna.bet"}))
	router.HandleFunc("/api/v1/picks/evaluate", func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}).Methods("POST", "OPTIONS")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/picks/evaluate", nil)
	req.Header.Set("Origin", "https://app.fortuna.bet")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.False(t, reached)
	assert.Equal(t, "https://app.fortuna.bet", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
