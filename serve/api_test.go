package serve

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geohashidx/codec"
	"geohashidx/resolve"
	"geohashidx/store"
)

func newTestResolver(t *testing.T) *resolve.Resolver {
	t.Helper()

	s, err := store.OpenForBuild(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	hash := geohash.EncodeWithPrecision(5, 5, 1)
	encoded, err := codec.Encode(codec.NewDirect("A"))
	require.NoError(t, err)
	require.NoError(t, s.Set(hash, encoded))
	require.NoError(t, s.Flush())

	return resolve.New(s, 5)
}

func TestGetLookup_PlainTextBody(t *testing.T) {
	router := NewRouter(newTestResolver(t))

	req := httptest.NewRequest("GET", "/lookup?lat=5&lng=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "A", rec.Body.String())
}

func TestGetLookup_MissingParams(t *testing.T) {
	router := NewRouter(newTestResolver(t))

	req := httptest.NewRequest("GET", "/lookup", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestPostLookup_PreservesOrder(t *testing.T) {
	router := NewRouter(newTestResolver(t))

	body, err := json.Marshal(map[string]any{
		"locations": []map[string]float64{
			{"lat": 5, "lng": 5},
			{"lat": 80, "lng": 170},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/lookup", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)

	var response locationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, []string{"A", ""}, response.Locations)
}

func TestPostLookup_MalformedBody(t *testing.T) {
	router := NewRouter(newTestResolver(t))

	req := httptest.NewRequest("POST", "/lookup", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}
