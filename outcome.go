package accounts

import "net/http"

// OutcomeStatus tags an Outcome. The set is closed; callers are expected to
// switch over it exhaustively instead of downcasting payloads.
type OutcomeStatus string

const (
	OutcomeCreated             OutcomeStatus = "created"
	OutcomeOK                  OutcomeStatus = "ok"
	OutcomeNoContent           OutcomeStatus = "no_content"
	OutcomeBadRequest          OutcomeStatus = "bad_request"
	OutcomeNotFound            OutcomeStatus = "not_found"
	OutcomeUnauthorized        OutcomeStatus = "unauthorized"
	OutcomeUnprocessableEntity OutcomeStatus = "unprocessable_entity"
	OutcomeInternalError       OutcomeStatus = "internal_error"
)

// Outcome is the only return channel of the account lifecycle engine: a
// tagged result carrying either a payload or an ordered error list, never
// both. Raw errors do not cross the engine boundary.
type Outcome struct {
	Status   OutcomeStatus
	Payload  any
	Location string
	Errors   []ErrorDetail
}

func Created(payload any, location string) Outcome {
	return Outcome{Status: OutcomeCreated, Payload: payload, Location: location}
}

func Ok(payload any) Outcome {
	return Outcome{Status: OutcomeOK, Payload: payload}
}

func NoContent() Outcome {
	return Outcome{Status: OutcomeNoContent}
}

func BadRequest(errs ...ErrorDetail) Outcome {
	return Outcome{Status: OutcomeBadRequest, Errors: errs}
}

func NotFound(errs ...ErrorDetail) Outcome {
	return Outcome{Status: OutcomeNotFound, Errors: errs}
}

func Unauthorized(errs ...ErrorDetail) Outcome {
	return Outcome{Status: OutcomeUnauthorized, Errors: errs}
}

func UnprocessableEntity(errs ...ErrorDetail) Outcome {
	return Outcome{Status: OutcomeUnprocessableEntity, Errors: errs}
}

func InternalError(errs ...ErrorDetail) Outcome {
	return Outcome{Status: OutcomeInternalError, Errors: errs}
}

// Failed reports whether the outcome carries errors.
func (o Outcome) Failed() bool {
	return len(o.Errors) > 0
}

// ErrorModel wraps the outcome errors in the wire shape used by failure
// responses.
func (o Outcome) ErrorModel() ErrorModel {
	return ErrorModel{Errors: o.Errors}
}

// HTTPStatus maps the outcome tag to its HTTP status code.
func (o Outcome) HTTPStatus() int {
	switch o.Status {
	case OutcomeCreated:
		return http.StatusCreated
	case OutcomeOK:
		return http.StatusOK
	case OutcomeNoContent:
		return http.StatusNoContent
	case OutcomeBadRequest:
		return http.StatusBadRequest
	case OutcomeNotFound:
		return http.StatusNotFound
	case OutcomeUnauthorized:
		return http.StatusUnauthorized
	case OutcomeUnprocessableEntity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ResultModel wraps successful payloads the way the HTTP surface renders
// them.
type ResultModel struct {
	Data any `json:"data"`
}

// TokenModel is the payload returned by a successful authentication.
type TokenModel struct {
	Token string `json:"token"`
}
