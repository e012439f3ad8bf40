package host

// handler.go implements the host's ServeHTTP method

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// ServeHTTP receives a GraphQL query as an HTTP request, executes the query and writes the result as JSON.
// A GET request has the query (and optional operationName/variables) as URL parameters, a POST request
// has them in a JSON body.  A websocket upgrade request is handed to the WS handler.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		h.serveWS(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	var req Request
	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
		req.OperationName = r.URL.Query().Get("operationName")
		if vars := r.URL.Query().Get("variables"); vars != "" {
			if err := decodeJSON([]byte(vars), &req.Variables); err != nil {
				writeError(w, http.StatusBadRequest, "Error decoding variables: "+err.Error())
				return
			}
		}
	case http.MethodPost:
		decoder := json.NewDecoder(r.Body)
		decoder.UseNumber() // allows us to distinguish ints from floats (see FixNumberVariables() below)
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Error decoding JSON request: "+err.Error())
			return
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "no query in request")
		return
	}

	// Since variables are sent as JSON (which does not distinguish int/float) we need to decide
	FixNumberVariables(req.Variables)

	if err := h.Build(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := h.Execute(r.Context(), req)
	if len(result.Errors) > 0 {
		h.logger.Debug("query failed", "operation", req.OperationName, "errors", len(result.Errors))
	}
	buf, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error encoding JSON response: "+err.Error())
		return
	}
	_, _ = w.Write(buf)
}

func decodeJSON(data []byte, v interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(v)
}

// writeError writes a GraphQL-style error response
func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	buf, _ := json.Marshal(map[string]interface{}{
		"data":   nil,
		"errors": []map[string]string{{"message": message}},
	})
	_, _ = w.Write(buf)
}

// FixNumberVariables goes through the structure created by the JSON decoder, converting any json.Number values to
// either an int64 or a float64.  This assumes that all the JSON numbers were decoded into a json.Number type, rather
// than int/float, by use of the json.Decode.UseNumber() method.
func FixNumberVariables(m map[string]interface{}) {
	for key, val := range m {
		m[key] = fixNumber(val)
	}
}

func fixNumber(val interface{}) interface{} {
	switch v := val.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]interface{}:
		FixNumberVariables(v)
	case []interface{}:
		for i := range v {
			v[i] = fixNumber(v[i])
		}
	}
	return val
}
