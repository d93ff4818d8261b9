package utils

import (
	"encoding/json"
	"net/http"
)

// Response is the standard JSON envelope for all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithError writes an error response with the given status code
func RespondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, Response{
		Status:  "error",
		Message: message,
	})
}

// RespondWithSuccess writes a success response with the given status code
func RespondWithSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	respondWithJSON(w, code, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
