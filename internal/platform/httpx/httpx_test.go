package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: start_date", ErrValidation), http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("pos: %w", ErrUpstream), http.StatusBadGateway},
		{ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{ErrTooLarge, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, tc.status, body.Status)
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("secret dsn"))
	assert.NotContains(t, rr.Body.String(), "secret")
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Table string `json:"table"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"table":"pivot"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "pivot", target.Table)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"table":"pivot","extra":1}`))
	err := DecodeJSON(req, &target)
	require.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	require.ErrorIs(t, DecodeJSON(req, &target), ErrValidation)
}

func TestDecodeJSONRejectsLargeBody(t *testing.T) {
	var target map[string]string
	payload := `{"k":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	require.ErrorIs(t, DecodeJSON(req, &target), ErrTooLarge)
}
