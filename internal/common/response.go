package common

import (
	"encoding/json"
	"net/http"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Envelope is the uniform {data, status, message} body most endpoints answer with.
type Envelope struct {
	Data    interface{} `json:"data"`
	Status  string      `json:"status,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Detail: message})
}

func RespondWithEnvelope(w http.ResponseWriter, code int, data interface{}, status, message string) {
	RespondWithJSON(w, code, Envelope{Data: data, Status: status, Message: message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
