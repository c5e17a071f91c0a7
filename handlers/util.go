package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
)

type messageResp struct {
	Message string `json:"message"`
}

// writeErrorResp maps an error onto the API taxonomy. Anything unknown is a
// 500 with a generic message; the detail only goes to the log.
func writeErrorResp(err error, w http.ResponseWriter, logger *log.Logger) {
	if err == nil {
		return
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		writeResp(validation, http.StatusBadRequest, w)
		return
	}

	status, msg := http.StatusInternalServerError, "Server error"
	switch {
	case errors.Is(err, domain.ErrTaskNotFound()):
		status, msg = http.StatusNotFound, "Task not found"
	case errors.Is(err, domain.ErrOwnerNotFound()), errors.Is(err, domain.ErrUserNotFound()):
		status, msg = http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrMissingToken()):
		status, msg = http.StatusUnauthorized, "No token, authorization denied"
	case errors.Is(err, domain.ErrInvalidToken()):
		status, msg = http.StatusUnauthorized, "Token is not valid"
	case errors.Is(err, domain.ErrUserAlreadyExists()):
		status, msg = http.StatusBadRequest, "User already exists"
	case errors.Is(err, domain.ErrInvalidCredentials()):
		status, msg = http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, domain.ErrTasksMustBeArray()):
		status, msg = http.StatusBadRequest, "Tasks must be an array"
	case errors.Is(err, domain.ErrInvalidRequestBody()):
		status, msg = http.StatusBadRequest, "Invalid request body"
	default:
		logger.Error("unexpected error", "err", err)
	}

	writeResp(messageResp{Message: msg}, status, w)
}

func writeResp(resp any, statusCode int, w http.ResponseWriter) {
	if resp == nil {
		w.WriteHeader(statusCode)
		return
	}
	respBytes, err := json.Marshal(resp)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(respBytes)
}

// readReq decodes the JSON body into req and answers 400 itself when the
// body is not valid JSON.
func readReq(req any, r *http.Request, w http.ResponseWriter) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeResp(messageResp{Message: "Invalid request body"}, http.StatusBadRequest, w)
		return domain.ErrInvalidRequestBody()
	}
	return nil
}
