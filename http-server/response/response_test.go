package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estimate-backend/internal/storage"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", storage.Invalid("quantity", "must be positive"), http.StatusBadRequest},
		{"not found", storage.NotFound("order", 1), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("service.x: %w", storage.NotFound("order", 1)), http.StatusNotFound},
		{"invalid transition", storage.InvalidTransition("order", "draft", "delivered", ""), http.StatusConflict},
		{"conflict", storage.Conflict("supplier price already exists"), http.StatusConflict},
		{"quantity exceeded", &storage.QuantityExceededError{LineID: 3, Requested: decimal.NewFromInt(5), Remaining: decimal.NewFromInt(4)}, http.StatusUnprocessableEntity},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestError_Body(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("quantity exceeded carries line and remaining", func(t *testing.T) {
		rr := httptest.NewRecorder()
		err := &storage.QuantityExceededError{LineID: 3, Requested: decimal.NewFromInt(5), Remaining: decimal.NewFromInt(4)}
		Error(rr, httptest.NewRequest(http.MethodPost, "/", nil), log, "test", err)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.LineID)
		assert.Equal(t, "4", resp.Remaining)
	})

	t.Run("transition carries both statuses", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Error(rr, httptest.NewRequest(http.MethodPost, "/", nil), log, "test",
			storage.InvalidTransition("contract", "sent", "completed", ""))

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "contract", resp.Entity)
		assert.Equal(t, "sent", resp.From)
		assert.Equal(t, "completed", resp.To)
	})

	t.Run("internal error is hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Error(rr, httptest.NewRequest(http.MethodGet, "/", nil), log, "test", errors.New("dial tcp 10.0.0.5:3306"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "10.0.0.5")
	})
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"date only", `"2026-03-02"`, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), false},
		{"null", `null`, time.Time{}, false},
		{"empty string", `""`, time.Time{}, false},
		{"wrong layout", `"02.03.2026"`, time.Time{}, true},
		{"with time", `"2026-03-02T10:00:00Z"`, time.Time{}, true},
		{"not a string", `20260302`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time), "got %s", d.Time)
		})
	}
}
