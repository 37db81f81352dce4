package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func guarded(user, pass string) http.Handler {
	return BasicAuth(user, pass)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
}

func TestBasicAuth(t *testing.T) {
	tests := []struct {
		name       string
		configured [2]string
		sent       *[2]string
		wantStatus int
	}{
		{"valid credentials", [2]string{"admin", "secret"}, &[2]string{"admin", "secret"}, http.StatusTeapot},
		{"wrong password", [2]string{"admin", "secret"}, &[2]string{"admin", "nope"}, http.StatusUnauthorized},
		{"wrong user", [2]string{"admin", "secret"}, &[2]string{"root", "secret"}, http.StatusUnauthorized},
		{"no header", [2]string{"admin", "secret"}, nil, http.StatusUnauthorized},
		{"admin not configured", [2]string{"", ""}, &[2]string{"", ""}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/supplier-prices", nil)
			if tt.sent != nil {
				req.SetBasicAuth(tt.sent[0], tt.sent[1])
			}
			rr := httptest.NewRecorder()

			guarded(tt.configured[0], tt.configured[1]).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Estimator Admin"`, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
