package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/identity"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name              string
		method            string
		origin            string
		expectedStatus    int
		expectHandler     bool
		expectedOrigin    string
		expectCredentials bool
	}{
		{
			name:           "Preflight request",
			method:         http.MethodOptions,
			expectedStatus: http.StatusNoContent,
			expectHandler:  false,
			expectedOrigin: "*",
		},
		{
			name:           "GET request without origin",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
			expectedOrigin: "*",
		},
		{
			name:              "POST request from the storefront",
			method:            http.MethodPost,
			origin:            "http://localhost:3000",
			expectedStatus:    http.StatusOK,
			expectHandler:     true,
			expectedOrigin:    "http://localhost:3000",
			expectCredentials: true,
		},
		{
			name:              "Preflight from the storefront",
			method:            http.MethodOptions,
			origin:            "http://localhost:3000",
			expectedStatus:    http.StatusNoContent,
			expectHandler:     false,
			expectedOrigin:    "http://localhost:3000",
			expectCredentials: true,
		},
		{
			name:           "Foreign origin is refused credentials",
			method:         http.MethodPost,
			origin:         "https://evil.example.com",
			expectedStatus: http.StatusOK,
			expectHandler:  true,
			expectedOrigin: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := CORS([]string{"http://localhost:3000"})(testHandler)

			req := httptest.NewRequest(tt.method, "/api/cart", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, "Origin", w.Header().Get("Vary"))
			if tt.expectCredentials {
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestLogging(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		path           string
		handlerStatus  int
		expectedStatus int
	}{
		{
			name:           "Successful request",
			method:         http.MethodGet,
			path:           "/api/cart",
			handlerStatus:  http.StatusOK,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Conflict",
			method:         http.MethodPost,
			path:           "/api/checkout",
			handlerStatus:  http.StatusConflict,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Upstream failure",
			method:         http.MethodGet,
			path:           "/api/orders",
			handlerStatus:  http.StatusBadGateway,
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			handler := Logging(logger)(testHandler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestLogging_RecordsSession(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	ctx := repository.WithDevice(req.Context(), "dev-1")
	ctx = identity.WithIdentity(ctx, identity.Identity{UserID: "u1"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req.WithContext(ctx))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dev-1", entry["device_id"])
	assert.Equal(t, identity.Identity{UserID: "u1"}.Key(), entry["identity"])
	assert.Equal(t, float64(http.StatusNoContent), entry["status"])
	assert.Equal(t, "http request", entry["message"])
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		panicValue     any
		expectedStatus int
	}{
		{
			name:           "No panic",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Panic with string",
			panicValue:     "cart decode exploded",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Panic with error",
			panicValue:     assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.panicValue != nil {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Recovery(logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/checkout", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.panicValue != nil {
				assert.JSONEq(t, `{"error": "internal server error"}`, w.Body.String())
			}
		})
	}
}

func TestResponseWriter_CapturesStatus(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusCreated, http.StatusSeeOther, http.StatusConflict} {
		w := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		rw.WriteHeader(code)

		assert.Equal(t, code, rw.statusCode)
		assert.Equal(t, code, w.Code)
	}
}
