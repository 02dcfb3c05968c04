package handler

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nayoon/stock-service/internal/adapter/rpc"
)

type GRPCHandler struct {
	rpc.UnimplementedStockServiceServer
	stockService StockService
	logger       *zap.Logger
}

func NewGRPCHandler(stockService StockService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{stockService: stockService, logger: logger}
}

func (h *GRPCHandler) CreateOrUpdate(ctx context.Context, req *rpc.CreateOrUpdateRequest) (*rpc.RemainingResponse, error) {
	if req.ProductId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid product id")
	}

	remaining, err := h.stockService.CreateOrUpdate(ctx, req.ProductId, int(req.InitialStock))
	if err != nil {
		return nil, h.statusError("CreateOrUpdate", req.ProductId, err)
	}

	return &rpc.RemainingResponse{ProductId: req.ProductId, Remaining: int32(remaining)}, nil
}

func (h *GRPCHandler) GetRemaining(ctx context.Context, req *rpc.GetRemainingRequest) (*rpc.RemainingResponse, error) {
	if req.ProductId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid product id")
	}

	remaining, err := h.stockService.GetRemaining(ctx, req.ProductId)
	if err != nil {
		return nil, h.statusError("GetRemaining", req.ProductId, err)
	}

	return &rpc.RemainingResponse{ProductId: req.ProductId, Remaining: int32(remaining)}, nil
}

func (h *GRPCHandler) IncreaseRemaining(ctx context.Context, req *rpc.AdjustRemainingRequest) (*rpc.AdjustRemainingResponse, error) {
	if req.ProductId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid product id")
	}

	if err := h.stockService.IncreaseRemaining(ctx, req.ProductId, int(req.Quantity)); err != nil {
		return nil, h.statusError("IncreaseRemaining", req.ProductId, err)
	}

	return &rpc.AdjustRemainingResponse{Success: true}, nil
}

func (h *GRPCHandler) DecreaseRemaining(ctx context.Context, req *rpc.AdjustRemainingRequest) (*rpc.AdjustRemainingResponse, error) {
	if req.ProductId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid product id")
	}

	if err := h.stockService.DecreaseRemaining(ctx, req.ProductId, int(req.Quantity)); err != nil {
		return nil, h.statusError("DecreaseRemaining", req.ProductId, err)
	}

	return &rpc.AdjustRemainingResponse{Success: true}, nil
}

func (h *GRPCHandler) statusError(method string, productID int64, err error) error {
	st := grpcError(err)
	if status.Code(st) == codes.Internal || status.Code(st) == codes.Unavailable {
		h.logger.Error("stock rpc failed",
			zap.String("method", method),
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	return st
}
