package api

import (
	"encoding/json"
	"net/http"
	"time"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/models/dtos"
)

func respondWithData(w http.ResponseWriter, initTime time.Time, message string, data any) {
	resp := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: common.GetResponseTime(initTime),
		Data:         data,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, initTime time.Time, statusCode int, message string) {
	resp := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      message,
		ResponseTime: common.GetResponseTime(initTime),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// respondAppError maps a service error onto the wire: typed errors carry
// their own status and client-safe message, everything else is a 500.
func respondAppError(w http.ResponseWriter, initTime time.Time, err error) {
	respondWithError(w, initTime, common.HTTPStatus(err), common.UserMessage(err))
}
