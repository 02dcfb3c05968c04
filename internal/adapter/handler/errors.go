package handler

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nayoon/stock-service/internal/core/service"
)

// StockService is the part of service.StockService the transports expose.
type StockService interface {
	CreateOrUpdate(ctx context.Context, productID int64, initialStock int) (int, error)
	GetRemaining(ctx context.Context, productID int64) (int, error)
	IncreaseRemaining(ctx context.Context, productID int64, quantity int) error
	DecreaseRemaining(ctx context.Context, productID int64, quantity int) error
}

type errorMapping struct {
	target   error
	httpCode int
	grpcCode codes.Code
	message  string
}

var errorMappings = []errorMapping{
	{service.ErrStockNotFound, http.StatusNotFound, codes.NotFound, "stock not found"},
	{service.ErrInvalidBaseline, http.StatusUnprocessableEntity, codes.FailedPrecondition, "initial stock below purchased quantity"},
	{service.ErrLimitExceeded, http.StatusConflict, codes.FailedPrecondition, "remaining stock would exceed initial stock"},
	{service.ErrInsufficientStock, http.StatusConflict, codes.FailedPrecondition, "insufficient stock"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, codes.InvalidArgument, "quantity must be positive"},
	{service.ErrLockUnavailable, http.StatusServiceUnavailable, codes.Unavailable, "stock is busy, try again"},
	{service.ErrDependencyFailure, http.StatusBadGateway, codes.Unavailable, "dependency failure"},
}

func mapError(err error) errorMapping {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m
		}
	}
	return errorMapping{
		target:   err,
		httpCode: http.StatusInternalServerError,
		grpcCode: codes.Internal,
		message:  "internal error",
	}
}

func grpcError(err error) error {
	m := mapError(err)
	return status.Error(m.grpcCode, m.message)
}
