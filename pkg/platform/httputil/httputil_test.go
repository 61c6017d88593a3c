package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zirrmi/pkg/domain-errors"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "bad_request", body["error"])
		assert.Equal(t, "invalid input", body["error_description"])
	})

	t.Run("validation carries field errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Validation("check the form", dErrors.FieldError{Field: "email", Message: "Email is required"}))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeBody(t, w)
		fields, ok := body["fields"].([]any)
		require.True(t, ok)
		assert.Len(t, fields, 1)
	})

	t.Run("plain errors become internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeBody(t, w)["error"])
	})

	t.Run("invalid state is a conflict", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, StatusFor(dErrors.CodeInvalidState))
	})
}

type nameRequest struct {
	Name string `json:"name"`
}

func (r *nameRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Plant"}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[nameRequest](w, r, log)
		require.True(t, ok)
		assert.Equal(t, "Plant", req.Name)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nom":"Plant"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[nameRequest](w, r, log)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":" "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[nameRequest](w, r, log)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
