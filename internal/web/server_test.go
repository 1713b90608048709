package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/config"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/pipeline"
)

func testServer(manifest *pipeline.Manifest) *Server {
	variants := []engine.AddressVariant{
		{UPRN: 1, Postcode: "GU34 1AA", Address: "12 HIGH STREET ALTON", Source: engine.SourceLPI, Label: engine.LabelApproved, IsPrimary: true},
		{UPRN: 1, Postcode: "GU34 1AA", Address: "CORNER CAFE 12 HIGH STREET ALTON", Source: engine.SourceOrganisation, Label: engine.LabelBusinessCurrent},
		{UPRN: 2, Postcode: "GU34 9ZZ", Address: "14 HIGH STREET ALTON", Source: engine.SourceLPI, Label: engine.LabelApproved, IsPrimary: true},
	}
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, variants, manifest, zap.NewNop())
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestGetVariantsByUPRN(t *testing.T) {
	rec, body := get(t, testServer(nil), "/api/variants/1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["count"])
}

func TestGetVariantsUnknownUPRN(t *testing.T) {
	rec, body := get(t, testServer(nil), "/api/variants/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body, "error")
}

func TestSearchByPostcode(t *testing.T) {
	rec, body := get(t, testServer(nil), "/api/search?postcode=gu34+1aa")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["count"])
}

func TestSearchRequiresPostcode(t *testing.T) {
	rec, _ := get(t, testServer(nil), "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	rec, body := get(t, testServer(nil), "/api/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["uprns"])
	assert.Equal(t, float64(3), body["total_variants"])

	bySource, ok := body["by_source"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), bySource["LPI"])
}

func TestManifestEndpoint(t *testing.T) {
	rec, body := get(t, testServer(&pipeline.Manifest{RunID: "run-123"}), "/api/manifest")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-123", body["run_id"])
}

func TestManifestMissing(t *testing.T) {
	rec, _ := get(t, testServer(nil), "/api/manifest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	rec, _ := get(t, testServer(nil), "/api/stats")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
