package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const StockServiceName = "stock.v1.StockService"

type CreateOrUpdateRequest struct {
	ProductId    int64 `json:"product_id"`
	InitialStock int32 `json:"initial_stock"`
}

type AdjustRemainingRequest struct {
	ProductId int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type GetRemainingRequest struct {
	ProductId int64 `json:"product_id"`
}

type RemainingResponse struct {
	ProductId int64 `json:"product_id"`
	Remaining int32 `json:"remaining"`
}

type AdjustRemainingResponse struct {
	Success bool `json:"success"`
}

type StockServiceServer interface {
	CreateOrUpdate(context.Context, *CreateOrUpdateRequest) (*RemainingResponse, error)
	GetRemaining(context.Context, *GetRemainingRequest) (*RemainingResponse, error)
	IncreaseRemaining(context.Context, *AdjustRemainingRequest) (*AdjustRemainingResponse, error)
	DecreaseRemaining(context.Context, *AdjustRemainingRequest) (*AdjustRemainingResponse, error)
}

// UnimplementedStockServiceServer can be embedded for forward compatibility.
type UnimplementedStockServiceServer struct{}

func (UnimplementedStockServiceServer) CreateOrUpdate(context.Context, *CreateOrUpdateRequest) (*RemainingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOrUpdate not implemented")
}

func (UnimplementedStockServiceServer) GetRemaining(context.Context, *GetRemainingRequest) (*RemainingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRemaining not implemented")
}

func (UnimplementedStockServiceServer) IncreaseRemaining(context.Context, *AdjustRemainingRequest) (*AdjustRemainingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method IncreaseRemaining not implemented")
}

func (UnimplementedStockServiceServer) DecreaseRemaining(context.Context, *AdjustRemainingRequest) (*AdjustRemainingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DecreaseRemaining not implemented")
}

func RegisterStockServiceServer(s grpc.ServiceRegistrar, srv StockServiceServer) {
	s.RegisterService(&stockServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(StockServiceServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StockServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + StockServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StockServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var stockServiceDesc = grpc.ServiceDesc{
	ServiceName: StockServiceName,
	HandlerType: (*StockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateOrUpdate", func(s StockServiceServer, ctx context.Context, in *CreateOrUpdateRequest) (any, error) {
			return s.CreateOrUpdate(ctx, in)
		}),
		unaryHandler("GetRemaining", func(s StockServiceServer, ctx context.Context, in *GetRemainingRequest) (any, error) {
			return s.GetRemaining(ctx, in)
		}),
		unaryHandler("IncreaseRemaining", func(s StockServiceServer, ctx context.Context, in *AdjustRemainingRequest) (any, error) {
			return s.IncreaseRemaining(ctx, in)
		}),
		unaryHandler("DecreaseRemaining", func(s StockServiceServer, ctx context.Context, in *AdjustRemainingRequest) (any, error) {
			return s.DecreaseRemaining(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stock/v1/stock.proto",
}

type StockServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewStockServiceClient(cc grpc.ClientConnInterface) *StockServiceClient {
	return &StockServiceClient{cc: cc}
}

func (c *StockServiceClient) CreateOrUpdate(ctx context.Context, in *CreateOrUpdateRequest, opts ...grpc.CallOption) (*RemainingResponse, error) {
	out := new(RemainingResponse)
	err := c.cc.Invoke(ctx, "/"+StockServiceName+"/CreateOrUpdate", in, out, append(opts, CallOption())...)
	return out, err
}

func (c *StockServiceClient) GetRemaining(ctx context.Context, in *GetRemainingRequest, opts ...grpc.CallOption) (*RemainingResponse, error) {
	out := new(RemainingResponse)
	err := c.cc.Invoke(ctx, "/"+StockServiceName+"/GetRemaining", in, out, append(opts, CallOption())...)
	return out, err
}

func (c *StockServiceClient) IncreaseRemaining(ctx context.Context, in *AdjustRemainingRequest, opts ...grpc.CallOption) (*AdjustRemainingResponse, error) {
	out := new(AdjustRemainingResponse)
	err := c.cc.Invoke(ctx, "/"+StockServiceName+"/IncreaseRemaining", in, out, append(opts, CallOption())...)
	return out, err
}

func (c *StockServiceClient) DecreaseRemaining(ctx context.Context, in *AdjustRemainingRequest, opts ...grpc.CallOption) (*AdjustRemainingResponse, error) {
	out := new(AdjustRemainingResponse)
	err := c.cc.Invoke(ctx, "/"+StockServiceName+"/DecreaseRemaining", in, out, append(opts, CallOption())...)
	return out, err
}
