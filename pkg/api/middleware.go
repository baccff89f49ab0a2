package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
)

// APIKeyHeader carries the API key of every /api/v1 request
const APIKeyHeader = "X-API-Key"

var (
	errMissingAPIKey = errors.New("missing " + APIKeyHeader + " header")
	errInvalidAPIKey = errors.New("invalid API key")
)

// checkAPIKey compares presented against expected in constant time. An empty
// expected key rejects every request.
func checkAPIKey(presented, expected string) error {
	if presented == "" {
		return errMissingAPIKey
	}
	if expected == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
		return errInvalidAPIKey
	}
	return nil
}

// apiKeyMiddleware rejects requests whose APIKeyHeader does not match expectedKey
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := checkAPIKey(r.Header.Get(APIKeyHeader), expectedKey); err != nil {
				sendError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess wraps data in a successful APIResponse
func sendSuccess(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// sendError wraps message in a failed APIResponse
func sendError(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, APIResponse{Success: false, Error: message})
}

func sendJSON(w http.ResponseWriter, statusCode int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
