package handlers

import (
	"encoding/json"
	"net/http"
)

// ajaxResponse is the admin ajax envelope.
type ajaxResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type restErrorData struct {
	Status int `json:"status"`
}

// restError is the error body of the integration REST routes.
type restError struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Data    restErrorData `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ajaxSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Data: data})
}

func ajaxError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ajaxResponse{Success: false, Data: message})
}

func writeRESTError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, restError{Code: code, Message: message, Data: restErrorData{Status: status}})
}

// RESTNoRoute answers every unknown integration route.
func RESTNoRoute(w http.ResponseWriter, r *http.Request) {
	writeRESTError(w, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.")
}
