package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusticketing/internal/delivery/http/helpers"
	"campusticketing/internal/delivery/http/middleware"
	"campusticketing/internal/domain"

	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "6f1c2d3e-4a5b-4c6d-8e7f-9a0b1c2d3e4f"
	testEventID = "0e9d8c7b-6a5f-4e3d-8c2b-1a0f9e8d7c6b"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// newRequest builds a request with an optional JSON body, path values and identity.
func newRequest(method, target, body string, claims *domain.TokenClaims, pathValues map[string]string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, "http://test"+target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if claims != nil {
		req = req.WithContext(middleware.SetClaims(req.Context(), claims))
	}
	return req
}

func student(id string) *domain.TokenClaims {
	return &domain.TokenClaims{UserID: id, Email: "s@example.com", Role: domain.RoleStudent}
}

func admin(id string) *domain.TokenClaims {
	return &domain.TokenClaims{UserID: id, Email: "a@example.com", Role: domain.RoleAdmin}
}

// decodeEnvelope decodes the API envelope and, when out is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, out any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if out != nil && envelope.Data != nil {
		b, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, out))
	}
	return envelope
}
