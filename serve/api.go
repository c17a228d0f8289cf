// Package serve exposes the Resolver over HTTP: a single-point GET lookup
// and a batch POST lookup, following the router/error-response conventions
// the teacher repo uses for its own query endpoint.
package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"

	"geohashidx/resolve"
)

// ErrorResponse is the JSON body written on any request failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(writer http.ResponseWriter, status int, message string, err error) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}

	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		sigolo.Errorf("Error marshalling error response object: %+v", marshalErr)
		return
	}

	if _, writeErr := writer.Write(body); writeErr != nil {
		sigolo.Errorf("Error writing error response: %+v", writeErr)
	}
}

// location is one query coordinate in a POST /lookup request body.
type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// locationsRequest is the body of a POST /lookup request.
type locationsRequest struct {
	Locations []location `json:"locations"`
}

// locationsResponse is the body returned by POST /lookup; GET /lookup
// answers with a plain-text body instead.
type locationsResponse struct {
	Locations []string `json:"locations"`
}

// NewRouter builds the mux.Router serving lookups against resolver.
func NewRouter(resolver *resolve.Resolver) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/lookup", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")

		latStr := request.URL.Query().Get("lat")
		lngStr := request.URL.Query().Get("lng")

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			writeError(writer, http.StatusBadRequest, "Invalid or missing 'lat' query parameter", err)
			return
		}

		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			writeError(writer, http.StatusBadRequest, "Invalid or missing 'lng' query parameter", err)
			return
		}

		value, err := resolver.Lookup(resolve.Point{Lat: lat, Lon: lng})
		if err != nil {
			sigolo.Errorf("Error resolving point (%f, %f): %+v", lat, lng, err)
			writeError(writer, http.StatusInternalServerError, "Error resolving location", err)
			return
		}

		writer.Header().Set("Content-Type", "text/plain")
		writer.WriteHeader(http.StatusOK)
		if _, err = writer.Write([]byte(value)); err != nil {
			sigolo.Errorf("Error writing lookup response: %+v", err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/lookup", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")

		var body locationsRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			writeError(writer, http.StatusBadRequest, "Error reading HTTP body", err)
			return
		}

		points := make([]resolve.Point, len(body.Locations))
		for i, loc := range body.Locations {
			points[i] = resolve.Point{Lat: loc.Lat, Lon: loc.Lng}
		}

		sigolo.Debugf("Resolving batch of %d locations", len(points))

		values, err := resolver.LookupBatch(points)
		if err != nil {
			sigolo.Errorf("Error resolving batch of %d locations: %+v", len(points), err)
			writeError(writer, http.StatusInternalServerError, fmt.Sprintf("Error resolving locations: %s", err.Error()), err)
			return
		}

		writeJSON(writer, locationsResponse{Locations: values})
	}).Methods(http.MethodPost)

	return r
}

func writeJSON(writer http.ResponseWriter, body locationsResponse) {
	writer.Header().Set("Content-Type", "application/json")

	encoded, err := json.Marshal(body)
	if err != nil {
		sigolo.Errorf("Error marshalling response object: %+v", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	if _, err = writer.Write(encoded); err != nil {
		sigolo.Errorf("Error writing response: %+v", err)
	}
}

// ListenAndServe starts the HTTP server on port, following the teacher's
// FatalCheck-on-startup-error convention.
func ListenAndServe(port string, resolver *resolve.Resolver) {
	r := NewRouter(resolver)
	sigolo.Infof("Start server on port %s", port)
	err := http.ListenAndServe(":"+port, r)
	sigolo.FatalCheck(err)
}
