package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"status error", NewStatusError(http.StatusBadRequest, "File upload required"), http.StatusBadRequest, "File upload required"},
		{"wrapped not found", fmt.Errorf("items: get: %w", ErrNotFound), http.StatusNotFound, "items: get: resource not found"},
		{"conflict", ErrConflict, http.StatusConflict, "conflict"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			require.Equal(t, tc.status, rr.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			require.Equal(t, tc.body, body.Error)
		})
	}
}

func TestErrorDefaultsToStatusText(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, http.StatusMethodNotAllowed, "")
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"Method Not Allowed"}`, rr.Body.String())
}
