package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"buffotte-api/internal/types"
	"buffotte-api/pkg/reconcile"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid target", reconcile.ErrInvalidTarget, http.StatusBadRequest},
		{"item not found", reconcile.ErrItemNotFound, http.StatusNotFound},
		{"item vanished", reconcile.ErrItemVanished, http.StatusInternalServerError},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(context.Background(), w, tt.err)

			require.Equal(t, tt.status, w.Code)

			var resp types.ErrorResp
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.False(t, resp.Success)
			require.NotEmpty(t, resp.Message)
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(context.Background(), w, errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"))

	var resp types.ErrorResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "internal server error", resp.Message)
}
