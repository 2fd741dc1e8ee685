// backend/src/utils/utils_test.go
package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.23, RoundFloat(1.2345, 2))
	assert.Equal(t, 1.24, RoundFloat(1.236, 2))
	assert.Equal(t, -1.23, RoundFloat(-1.2345, 2))
	assert.Equal(t, 100.0, RoundFloat(99.999, 2))
}

func TestSendJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "something went wrong", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "something went wrong", body["error"])
}

func TestGenerateETag(t *testing.T) {
	type payload struct {
		Name  string
		Count int
	}

	a, err := GenerateETag(payload{"x", 1})
	require.NoError(t, err)
	b, err := GenerateETag(payload{"x", 1})
	require.NoError(t, err)
	c, err := GenerateETag(payload{"x", 2})
	require.NoError(t, err)

	assert.Equal(t, a, b, "equal values must hash identically")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
