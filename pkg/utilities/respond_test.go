package utilities

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestWriteResult(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteResult(rec, http.StatusOK, "ok", map[string]string{"k": "v"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	out := decode(t, rec)
	assert.Equal(t, float64(200), out["code"])
	assert.Equal(t, "ok", out["message"])
	assert.Contains(t, out, "result")
	assert.NotContains(t, out, "data")
}

func TestWriteData(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusOK, "success", []int{1, 2})

	out := decode(t, rec)
	assert.Contains(t, out, "data")
	assert.NotContains(t, out, "result")
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, float64(400), out["code"])
	assert.Equal(t, "bad input", out["message"])
	assert.NotContains(t, out, "result")
}
