package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/subregiones/internal/engine/features"
	"github.com/rendis/subregiones/internal/model"
)

type stubLoader struct {
	features []model.Feature
	err      error
}

func (l stubLoader) Query(context.Context) ([]model.Feature, error) {
	return l.features, l.err
}

func fixture() []model.Feature {
	return []model.Feature{
		{
			Attributes: model.Attributes{DepartmentCode: "05", SubregionName: "Norte", SubregionCode: "501"},
			Geometry:   &model.Geometry{Rings: [][]model.Coord{{{-75.0, 6.0}, {-75.1, 6.1}, {-75.0, 6.1}}}},
		},
		{
			Attributes: model.Attributes{DepartmentCode: "05", SubregionName: "<Sur>", SubregionCode: "502"},
			Geometry:   &model.Geometry{Rings: [][]model.Coord{{{-75.5, 5.5}, {-75.6, 5.6}, {-75.5, 5.6}}}},
		},
		{
			Attributes: model.Attributes{DepartmentCode: "08", SubregionName: "Costa", SubregionCode: "801"},
			Geometry:   nil,
		},
	}
}

func newTestServer(t *testing.T, loader stubLoader) http.Handler {
	t.Helper()
	store := features.NewStore(loader)
	_ = store.Load(context.Background(), nil)
	return New(store, Options{}, nil).Router()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := get(t, newTestServer(t, stubLoader{features: fixture()}), "/healthz")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":"ok","loaded":true}`, rr.Body.String())
}

func TestIndexServesPage(t *testing.T) {
	rr := get(t, newTestServer(t, stubLoader{}), "/")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	body := rr.Body.String()
	assert.Contains(t, body, `id="departamento"`)
	assert.Contains(t, body, `id="subregion"`)
	assert.Contains(t, body, `id="cargando"`)
	assert.Contains(t, body, `id="map"`)
	// Overlay responses that arrive after a newer selection are dropped.
	assert.Contains(t, body, "seq !== filterSeq")
}

func TestOptions(t *testing.T) {
	rr := get(t, newTestServer(t, stubLoader{features: fixture()}), "/api/options")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"departamentos":["05","08"],"subregiones":["Norte","<Sur>","Costa"]}`, rr.Body.String())
}

func TestOptions_FailedLoadServesEmptyLists(t *testing.T) {
	h := newTestServer(t, stubLoader{err: errors.New("boom")})

	rr := get(t, h, "/api/options")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"departamentos":[],"subregiones":[]}`, rr.Body.String())

	rr = get(t, h, "/healthz")
	assert.JSONEq(t, `{"status":"ok","loaded":false}`, rr.Body.String())

	rr = get(t, h, "/api/overlays")
	assert.JSONEq(t, `{"count":0,"overlays":[]}`, rr.Body.String())
}

type overlaysBody struct {
	Count    int `json:"count"`
	Overlays []struct {
		Rings      [][][2]float64     `json:"rings"`
		Popup      string             `json:"popup"`
		Style      model.PolygonStyle `json:"style"`
		Attributes model.Popup        `json:"attributes"`
	} `json:"overlays"`
}

func TestOverlays(t *testing.T) {
	h := newTestServer(t, stubLoader{features: fixture()})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filter skips features without rings", "", []string{"501", "502"}},
		{"department", "?departamento=05", []string{"501", "502"}},
		{"department without geometry", "?departamento=08", nil},
		{"both", "?departamento=05&subregion=Norte", []string{"501"}},
		{"contradiction", "?departamento=08&subregion=Norte", nil},
		{"unknown", "?departamento=99", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, h, "/api/overlays"+tt.query)
			require.Equal(t, http.StatusOK, rr.Code)

			var body overlaysBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, len(tt.want), body.Count)

			var codes []string
			for _, o := range body.Overlays {
				codes = append(codes, o.Attributes.SubregionCode)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestOverlays_RingsAreLatLngAndPopupEscaped(t *testing.T) {
	rr := get(t, newTestServer(t, stubLoader{features: fixture()}), "/api/overlays?subregion=%3CSur%3E")
	require.Equal(t, http.StatusOK, rr.Code)

	var body overlaysBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Overlays, 1)

	o := body.Overlays[0]
	assert.Equal(t, [2]float64{5.5, -75.5}, o.Rings[0][0])
	assert.Equal(t, model.DefaultPolygonStyle, o.Style)
	assert.Contains(t, o.Popup, "&lt;Sur&gt;")
	assert.NotContains(t, o.Popup, "<Sur>")
}

func TestMapOptions(t *testing.T) {
	rr := get(t, newTestServer(t, stubLoader{}), "/api/map")
	require.Equal(t, http.StatusOK, rr.Code)

	var opts map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &opts))
	assert.Equal(t, []any{4.5709, -74.2973}, opts["center"])
	assert.EqualValues(t, 6, opts["zoom"])
	assert.EqualValues(t, 3, opts["minZoom"])
	assert.EqualValues(t, 16, opts["maxZoom"])
}

func TestCORSPreflight(t *testing.T) {
	h := New(features.NewStore(stubLoader{}), Options{CORSOrigins: []string{"https://example.org"}}, nil).Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/options", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://example.org", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestLocate(t *testing.T) {
	h := newTestServer(t, stubLoader{features: fixture()})

	rr := get(t, h, "/api/locate?lat=6.08&lng=-75.02")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"count":1,"subregiones":[{"subregion_name":"Norte","subregion_code":"501","department_code":"05"}]}`, rr.Body.String())

	rr = get(t, h, "/api/locate?lat=0&lng=0")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"count":0,"subregiones":[]}`, rr.Body.String())

	rr = get(t, h, "/api/locate?lat=abc&lng=0")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
