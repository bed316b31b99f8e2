package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/venicegeo/bf-snap/metadata"
	"github.com/venicegeo/bf-snap/util"
)

const maxMetadataBody = 1 << 20

// ListHandler is a handler for /runs
// @Title runsListHandler
// @Description lists recorded gpt invocations, most recent first
// @Param   limit   query   int   false   "The maximum number of runs to return"
// @Success 200 {array}  Run
// @Failure 400 {object} string
// @Router /runs [get]
type ListHandler struct {
	Context Context
}

// NewListHandler creates a new handler on the given store
func NewListHandler(store Store) *ListHandler {
	return &ListHandler{Context: Context{Store: store}}
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if r.FormValue("limit") != "" {
		var err error
		if limit, err = strconv.Atoi(r.FormValue("limit")); err != nil || limit <= 0 {
			message := fmt.Sprintf("The limit value of %v is invalid", r.FormValue("limit"))
			util.LogAlert(&h.Context, message)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			return
		}
	}

	runs, err := h.Context.Store.List(r.Context(), limit)
	if err != nil {
		message := fmt.Sprintf("Error listing runs: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// RunHandler is a handler for /runs/{id}
// @Title runHandler
// @Description returns one recorded gpt invocation, or with format=graph the graph it ran
// @Param   id       path    string  true    "The ID of the run"
// @Param   format   query   string  false   "json (default) or graph"
// @Success 200 {object}  Run
// @Failure 404 {object}  string
// @Router /runs/{id} [get]
type RunHandler struct {
	Context Context
}

// NewRunHandler creates a new handler on the given store
func NewRunHandler(store Store) *RunHandler {
	return &RunHandler{Context: Context{Store: store}}
}

func (h RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	runID, ok := mux.Vars(r)["id"]
	if !ok {
		message := "No run ID found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	run, err := h.Context.Store.Get(r.Context(), runID)
	if errors.Is(err, ErrNotFound) {
		message := fmt.Sprintf("Run not found: %s", runID)
		util.LogInfo(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}
	if err != nil {
		message := fmt.Sprintf("Server error searching for run: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}

	switch r.FormValue("format") {
	case "", "json":
		writeJSON(w, run)
	case "graph":
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(run.Graph))
	default:
		message := fmt.Sprintf("Unknown format %s", r.FormValue("format"))
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
	}
}

// DefaultsHandler is a handler for /operators/{operator}/defaults
// @Title operatorDefaultsHandler
// @Description lists the parameters of a gpt operator with their default values
// @Param   operator   path   string  true   "The operator name, e.g. Resample"
// @Success 200 {array}  gpt.ParameterDescriptor
// @Failure 500 {object} string
// @Router /operators/{operator}/defaults [get]
type DefaultsHandler struct {
	Context Context
}

// NewDefaultsHandler creates a new handler on the given registry
func NewDefaultsHandler(registry OperatorRegistry) *DefaultsHandler {
	return &DefaultsHandler{Context: Context{Registry: registry}}
}

func (h DefaultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	operator, ok := mux.Vars(r)["operator"]
	if !ok || operator == "" {
		message := "No operator found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	descriptors, err := h.Context.Registry.Descriptors(r.Context(), operator)
	if err != nil {
		message := fmt.Sprintf("Could not get parameters of operator %s: %v", operator, err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	writeJSON(w, descriptors)
}

// MetadataHandler is a handler for /metadata
// @Title metadataHandler
// @Description renders a metadata record (YAML or JSON body) as a sidecar
// @Accept  json
// @Param   format   query   string  false   "xml (default), properties or geojson"
// @Success 200 {object}  string
// @Failure 400 {object}  string
// @Router /metadata [post]
type MetadataHandler struct {
	Context Context
}

// NewMetadataHandler creates a new handler
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

func (h MetadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	record, err := metadata.LoadRecord(http.MaxBytesReader(w, r.Body, maxMetadataBody))
	if err != nil {
		message := fmt.Sprintf("Invalid metadata record: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "xml":
		doc, err := metadata.EOP(*record)
		if err != nil {
			util.HTTPError(r, w, &h.Context, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		doc.WriteTo(w)
	case "properties":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(metadata.Properties(*record)))
	case "geojson":
		feature, err := metadata.Footprint(*record)
		if err != nil {
			util.HTTPError(r, w, &h.Context, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		writeJSON(w, feature)
	default:
		message := fmt.Sprintf("Unknown format %s", format)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	json.NewEncoder(w).Encode(value)
}
