package web

import (
	"encoding/json"
	"log"
	"net/http"

	"taskboard/internal/service"
)

// FormState is what a login or registration form is re-rendered with.
type FormState struct {
	Values map[string]string `json:"values,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// Renderer turns view models into responses.
type Renderer interface {
	Board(w http.ResponseWriter, r *http.Request, view *service.BoardView)
	Form(w http.ResponseWriter, r *http.Request, status int, name string, state FormState)
	Error(w http.ResponseWriter, r *http.Request, status int, message string)
}

// JSONRenderer writes view models as JSON documents.
type JSONRenderer struct{}

func (JSONRenderer) Board(w http.ResponseWriter, _ *http.Request, view *service.BoardView) {
	writeJSON(w, http.StatusOK, view)
}

func (JSONRenderer) Form(w http.ResponseWriter, _ *http.Request, status int, name string, state FormState) {
	writeJSON(w, status, struct {
		Form string `json:"form"`
		FormState
	}{Form: name, FormState: state})
}

func (JSONRenderer) Error(w http.ResponseWriter, _ *http.Request, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[warn] encode response: %v", err)
	}
}
