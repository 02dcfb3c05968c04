package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const PurchaseServiceName = "purchase.v1.PurchaseService"

type QuantitySumRequest struct {
	ProductId int64 `json:"product_id"`
}

type QuantitySumResponse struct {
	ProductId   int64 `json:"product_id"`
	QuantitySum int64 `json:"quantity_sum"`
}

// PurchaseServiceServer is implemented by the purchase service; it lives here
// so the client can be exercised against an in-process server.
type PurchaseServiceServer interface {
	GetQuantitySum(context.Context, *QuantitySumRequest) (*QuantitySumResponse, error)
}

func RegisterPurchaseServiceServer(s grpc.ServiceRegistrar, srv PurchaseServiceServer) {
	s.RegisterService(&purchaseServiceDesc, srv)
}

var purchaseServiceDesc = grpc.ServiceDesc{
	ServiceName: PurchaseServiceName,
	HandlerType: (*PurchaseServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetQuantitySum",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(QuantitySumRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(PurchaseServiceServer).GetQuantitySum(ctx, in)
				}
				info := &grpc.UnaryServerInfo{
					Server:     srv,
					FullMethod: "/" + PurchaseServiceName + "/GetQuantitySum",
				}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(PurchaseServiceServer).GetQuantitySum(ctx, req.(*QuantitySumRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "purchase/v1/purchase.proto",
}

type PurchaseServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPurchaseServiceClient(cc grpc.ClientConnInterface) *PurchaseServiceClient {
	return &PurchaseServiceClient{cc: cc}
}

func (c *PurchaseServiceClient) GetQuantitySum(ctx context.Context, in *QuantitySumRequest, opts ...grpc.CallOption) (*QuantitySumResponse, error) {
	out := new(QuantitySumResponse)
	err := c.cc.Invoke(ctx, "/"+PurchaseServiceName+"/GetQuantitySum", in, out, append(opts, CallOption())...)
	return out, err
}
