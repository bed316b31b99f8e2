package runs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venicegeo/bf-snap/gpt"
	"github.com/venicegeo/bf-snap/metadata"
)

type mockRegistry struct {
	descriptors map[string][]gpt.ParameterDescriptor
}

func (m mockRegistry) Descriptors(ctx context.Context, operator string) ([]gpt.ParameterDescriptor, error) {
	if d, ok := m.descriptors[operator]; ok {
		return d, nil
	}
	return nil, errors.New("unknown operator")
}

func newTestRouter(t *testing.T) *mux.Router {
	store := NewMemoryStore()
	require.Nil(t, store.Insert(context.Background(), mockRun("run-1", 0)))
	require.Nil(t, store.Insert(context.Background(), mockRun("run-2", time.Hour)))

	bilinear := "BILINEAR_INTERPOLATION"
	registry := mockRegistry{descriptors: map[string][]gpt.ParameterDescriptor{
		"Resample": {
			{Name: "upsampling", Type: "string", DefaultValue: &bilinear},
			{Name: "targetResolution", Type: "integer"},
		},
	}}

	router := mux.NewRouter()
	router.Handle("/runs", NewListHandler(store)).Methods("GET")
	router.Handle("/runs/{id}", NewRunHandler(store)).Methods("GET")
	router.Handle("/operators/{operator}/defaults", NewDefaultsHandler(registry)).Methods("GET")
	router.Handle("/metadata", NewMetadataHandler()).Methods("POST")
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	response := httptest.NewRecorder()
	router.ServeHTTP(response, req)
	return response
}

func TestListHandler(t *testing.T) {
	// Tested code
	response := serve(newTestRouter(t), "GET", "/runs?limit=1", "")

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	var runs []Run
	require.Nil(t, json.Unmarshal(response.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-2", runs[0].ID)
}

func TestListHandler_BadLimit(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, serve(router, "GET", "/runs?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, "GET", "/runs?limit=-1", "").Code)
}

func TestRunHandler(t *testing.T) {
	router := newTestRouter(t)

	response := serve(router, "GET", "/runs/run-1", "")
	assert.Equal(t, http.StatusOK, response.Code)
	var run Run
	require.Nil(t, json.Unmarshal(response.Body.Bytes(), &run))
	assert.Equal(t, 4242, run.PID)
	assert.Equal(t, int64(1500), run.DurationMS)

	response = serve(router, "GET", "/runs/run-1?format=graph", "")
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "application/xml", response.Header().Get("Content-Type"))
	assert.Equal(t, "<graph><version>1.0</version></graph>", response.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(router, "GET", "/runs/run-1?format=pdf", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "GET", "/runs/missing", "").Code)
}

func TestDefaultsHandler(t *testing.T) {
	router := newTestRouter(t)

	response := serve(router, "GET", "/operators/Resample/defaults", "")
	assert.Equal(t, http.StatusOK, response.Code)
	var descriptors []gpt.ParameterDescriptor
	require.Nil(t, json.Unmarshal(response.Body.Bytes(), &descriptors))
	require.Len(t, descriptors, 2)
	assert.Equal(t, "BILINEAR_INTERPOLATION", *descriptors[0].DefaultValue)
	assert.Nil(t, descriptors[1].DefaultValue)

	assert.Equal(t, http.StatusInternalServerError, serve(router, "GET", "/operators/Nope/defaults", "").Code)
}

const metadataBody = `{
  "title": "Sigma0",
  "startdate": "2018-05-01T10:00:00Z",
  "enddate": "2018-05-01T10:00:25Z",
  "wkt": "POLYGON((30 10, 40 40, 20 40, 10 20, 30 10))",
  "product_type": "S1_SIGMA0",
  "identifier": "S1A_0001",
  "cat": [{"name": "sensor", "terms": ["sar"]}]
}`

func TestMetadataHandler_XML(t *testing.T) {
	// Tested code
	response := serve(newTestRouter(t), "POST", "/metadata", metadataBody)

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "application/xml", response.Header().Get("Content-Type"))
	record, err := metadata.ReadEOP(response.Body)
	require.Nil(t, err)
	assert.Equal(t, "S1A_0001", record.Identifier)
	assert.Equal(t, "2018-05-01T10:00:25Z", record.EndDate)
}

func TestMetadataHandler_Properties(t *testing.T) {
	response := serve(newTestRouter(t), "POST", "/metadata?format=properties", metadataBody)

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "title=Sigma0\n"+
		"date=2018-05-01T10:00:00Z/2018-05-01T10:00:25Z\n"+
		"geometry=POLYGON((30 10, 40 40, 20 40, 10 20, 30 10))\n"+
		"category=sar\n", response.Body.String())
}

func TestMetadataHandler_GeoJSON(t *testing.T) {
	response := serve(newTestRouter(t), "POST", "/metadata?format=geojson", metadataBody)

	assert.Equal(t, http.StatusOK, response.Code)
	var feature map[string]interface{}
	require.Nil(t, json.Unmarshal(response.Body.Bytes(), &feature))
	assert.Equal(t, "Feature", feature["type"])
	assert.Equal(t, "S1A_0001", feature["id"])
}

func TestMetadataHandler_Errors(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, serve(router, "POST", "/metadata", `{"startdate": "2018-05-01"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, "POST", "/metadata", `{"bogus": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, "POST", "/metadata?format=geojson", `{"title": "no footprint"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, "POST", "/metadata?format=csv", metadataBody).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(router, "GET", "/metadata", "").Code)
}
