package errors

import "net/http"

// ErrorResponse is the JSON envelope handlers return for a failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the client-facing half of an AppError. Retryable tells
// the client whether backing off and repeating the request is worthwhile,
// which is how resilience rejections (open breaker, probe limit, bulkhead,
// rate limit) are distinguished from permanent failures on the wire.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse builds the response envelope for this error. The cause and the
// HTTP status stay server-side; details such as the breaker name or the
// attempt count are passed through for diagnostics.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// ResponseFor maps any error onto an HTTP status and response body.
// AppErrors keep their own status mapping; everything else is reported as an
// internal error so unclassified messages never leak to clients.
func ResponseFor(err error) (int, ErrorResponse) {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus, appErr.ToResponse()
	}
	return http.StatusInternalServerError, Internal(err).ToResponse()
}
