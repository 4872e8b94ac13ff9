package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/localrivet/distill/internal/errortypes"
)

// ErrorResponse represents the structure of error responses sent by the API
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes reported to clients
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeSegmentationError = "SEGMENTATION_ERROR"
	CodeGenerationError   = "GENERATION_ERROR"
	CodeBatchAborted      = "BATCH_ABORTED"
	CodeNetworkError      = "NETWORK_ERROR"
	CodeConfigError       = "CONFIG_ERROR"
	CodeExternalError     = "EXTERNAL_ERROR"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeUnknownError      = "UNKNOWN_ERROR"
	CodeInvalidRequest    = "INVALID_REQUEST"
)

// ErrorCode classifies err by the type of its outermost AppError.
func ErrorCode(err error) string {
	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeValidation:
		return CodeValidationError
	case errortypes.ErrorTypeSegmentation:
		return CodeSegmentationError
	case errortypes.ErrorTypeGeneration:
		return CodeGenerationError
	case errortypes.ErrorTypeBatchAbort:
		return CodeBatchAborted
	case errortypes.ErrorTypeNetwork:
		return CodeNetworkError
	case errortypes.ErrorTypeConfig:
		return CodeConfigError
	case errortypes.ErrorTypeExternal:
		return CodeExternalError
	case errortypes.ErrorTypeInternal:
		return CodeInternalError
	default:
		return CodeUnknownError
	}
}

// HTTPStatus maps err to a response status. A batch aborted by an invalid
// document is the client's fault, like any other validation error.
func HTTPStatus(err error) int {
	switch {
	case errortypes.IsValidationError(err):
		return http.StatusBadRequest
	case errortypes.IsSegmentationError(err):
		return http.StatusUnprocessableEntity
	case errortypes.IsGenerationError(err), errortypes.IsNetworkError(err),
		errortypes.TypeOf(err) == errortypes.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// failedIndex returns the document index recorded on a batch abort.
func failedIndex(err error) *int {
	var appErr *errortypes.AppError
	if !errors.As(err, &appErr) || appErr.Type != errortypes.ErrorTypeBatchAbort {
		return nil
	}
	if idx, ok := appErr.Fields["document_index"].(int); ok {
		return &idx
	}
	return nil
}

// errorToResponse converts an error to a standardized ErrorResponse
func errorToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Status:  "error",
		Code:    ErrorCode(err),
		Message: err.Error(),
	}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		resp.Details = make(map[string]interface{}, len(appErr.Fields))
		for k, v := range appErr.Fields {
			if e, ok := v.(error); ok {
				v = e.Error()
			}
			resp.Details[k] = v
		}
	}
	return resp
}

// writeErrorResponse writes a structured error response to the HTTP response writer
func writeErrorResponse(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// HandleBadRequest handles 400 Bad Request errors for malformed input
func HandleBadRequest(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse{Status: "error", Code: CodeInvalidRequest, Message: message}
	if err != nil {
		resp.Details = map[string]interface{}{"error": err.Error()}
	}
	writeErrorResponse(w, http.StatusBadRequest, resp)
}

// HandleError logs err and writes the response matching its type.
func HandleError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		errortypes.LogError(nil, err)
	} else {
		slog.Warn("Request rejected", "status", status, "error", err)
	}
	writeErrorResponse(w, status, errorToResponse(err))
}
