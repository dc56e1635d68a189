package handler

import (
	"errors"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
	apierrors "github.com/Apurer/northwind-orders/internal/shared/errors"
)

// ProblemMapper translates order error kinds into problem responses.
// Store failures map to a bare 500 so driver messages never reach clients.
func ProblemMapper(err error) (apierrors.ProblemDetail, bool) {
	var notFound *ports.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return apierrors.NewNotFoundProblem("order", notFound.OrderID), true
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, domain.ErrValidation):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrInvalidArgument):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrIdempotencyConflict), errors.Is(err, ports.ErrIdempotencyInProgress):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrRepositoryFailure):
		return apierrors.ErrInternal, true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
