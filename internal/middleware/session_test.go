package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/identity"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser map[string]identity.Identity

func (p stubParser) Parse(token string) identity.Identity {
	if id, ok := p[token]; ok {
		return id
	}
	return identity.Guest()
}

func TestSession(t *testing.T) {
	asha := identity.Identity{UserID: "u1", Name: "Asha", Token: "tok"}
	existingDevice := uuid.New().String()

	parser := stubParser{
		"Bearer header-token": asha,
		"cookie-token":       asha,
	}

	tests := []struct {
		name           string
		deviceCookie   string
		authorization  string
		tokenCookie    string
		expectNewSID   bool
		expectedUserID string
	}{
		{
			name:         "New browser gets a device cookie",
			expectNewSID: true,
		},
		{
			name:         "Existing device is kept",
			deviceCookie: existingDevice,
		},
		{
			name:         "Malformed device cookie is replaced",
			deviceCookie: "../../etc",
			expectNewSID: true,
		},
		{
			name:           "Identity from Authorization header",
			deviceCookie:   existingDevice,
			authorization:  "Bearer header-token",
			expectedUserID: "u1",
		},
		{
			name:           "Identity from token cookie",
			deviceCookie:   existingDevice,
			tokenCookie:    "cookie-token",
			expectedUserID: "u1",
		},
		{
			name:          "Unknown token is a guest",
			deviceCookie:  existingDevice,
			authorization: "Bearer forged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotDevice string
			var gotIdentity identity.Identity
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotDevice = repository.DeviceFromContext(r.Context())
				gotIdentity = identity.FromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := Session(parser, zerolog.Nop())(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.deviceCookie != "" {
				req.AddCookie(&http.Cookie{Name: DeviceCookie, Value: tt.deviceCookie})
			}
			if tt.tokenCookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.tokenCookie})
			}
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			cookies := w.Result().Cookies()
			if tt.expectNewSID {
				require.Len(t, cookies, 1)
				assert.Equal(t, DeviceCookie, cookies[0].Name)
				assert.True(t, cookies[0].HttpOnly)
				assert.Equal(t, cookies[0].Value, gotDevice)
				_, err := uuid.Parse(gotDevice)
				assert.NoError(t, err)
			} else {
				assert.Empty(t, cookies)
				assert.Equal(t, tt.deviceCookie, gotDevice)
			}

			assert.Equal(t, tt.expectedUserID, gotIdentity.UserID)
		})
	}
}
