package lifecycle

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smartfactory/internal/model"
)

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidStateError reports a transition attempt from a state that is not in
// the allowed source set.
type InvalidStateError struct {
	LotID     uint
	Current   model.LotStatus
	Requested model.LotStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("lot %d cannot move from %s to %s", e.LotID, e.Current, e.Requested)
}

// PreconditionError reports a stage checklist that was not fully satisfied.
type PreconditionError struct {
	Failed []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("preconditions not satisfied: %s", strings.Join(e.Failed, ", "))
}

// ValidationError reports malformed or inconsistent stage input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// HTTPStatus maps a lifecycle error to the HTTP status a handler should
// return. Unrecognized errors are treated as internal failures.
func HTTPStatus(err error) int {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	var is *InvalidStateError
	if errors.As(err, &is) {
		return http.StatusBadRequest
	}
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return http.StatusBadRequest
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
