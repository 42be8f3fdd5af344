package services

import (
	"errors"
	"fmt"
	"net/http"

	apierrors "ecomdash/internal/errors"
	"ecomdash/pkg/contracts/domain"
)

// Dashboard service errors
var (
	ErrInvalidRange       = errors.New("invalid date range")
	ErrInvalidQuery       = errors.New("invalid dashboard query")
	ErrDatasetUnavailable = errors.New("dataset not loaded")
)

// QueryError reports one invalid query field.
type QueryError struct {
	Field   string
	Value   string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Message)
}

func (e *QueryError) Unwrap() error {
	return ErrInvalidQuery
}

// RangeError reports a start date after the end date.
type RangeError struct {
	Start string
	End   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("start date %s is after end date %s", e.Start, e.End)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// MapError converts dashboard service errors into API errors. Errors it does
// not recognise are returned unchanged.
func MapError(err error) error {
	var (
		queryErr *QueryError
		rangeErr *RangeError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &queryErr):
		return apierrors.ErrValidation(queryErr.Field, queryErr.Message)
	case errors.As(err, &rangeErr):
		return apierrors.InvalidRangeError(rangeErr.Start, rangeErr.End)
	case errors.Is(err, ErrInvalidRange), errors.Is(err, domain.ErrInvertedRange):
		return apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidRange, err.Error())
	case errors.Is(err, ErrDatasetUnavailable):
		return apierrors.ErrDatasetUnavailable
	default:
		return err
	}
}
