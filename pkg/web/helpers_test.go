package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestParseID(t *testing.T) {
	testCases := []struct {
		name       string
		pathID     string
		expectedID int64
		expectedOK bool
	}{
		{name: "valid", pathID: "42", expectedID: 42, expectedOK: true},
		{name: "negative", pathID: "-7", expectedID: -7, expectedOK: true},
		{name: "not a number", pathID: "abc", expectedOK: false},
		{name: "overflow", pathID: "92233720368547758070", expectedOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.SetPathValue("id", tc.pathID)
			rec := httptest.NewRecorder()
			// when
			id, ok := ParseID(rec, req, discard)
			// then
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedID, id)
			if !tc.expectedOK {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.JSONEq(t, `{"error":"Invalid ID: `+tc.pathID+`"}`, rec.Body.String())
			}
		})
	}
}

func TestDecodeJSON_KeepsIntegersExact(t *testing.T) {
	// given
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id": 9007199254740993}`))
	rec := httptest.NewRecorder()
	var body map[string]any
	// when
	ok := DecodeJSON(rec, req, discard, &body)
	// then
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), body["id"])
}

func TestDecodeJSON_InvalidBody(t *testing.T) {
	// given
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":`))
	rec := httptest.NewRecorder()
	var body map[string]any
	// when
	ok := DecodeJSON(rec, req, discard, &body)
	// then
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
}

func TestRespondJSON_NilPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, discard, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
