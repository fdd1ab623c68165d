// Package ordering defines the ordering gRPC service: its messages, the
// service descriptor and a typed client. Messages are plain Go structs
// carried by the JSON codec registered in this package.
package ordering

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "ordering.OrderingService"

type OrderingServiceServer interface {
	GetCustomer(context.Context, *GetCustomerRequest) (*GetCustomerResponse, error)
	ListUpcomingOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	ListDeliveredOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	DeliverOrders(context.Context, *UpdateOrdersStatusRequest) (*UpdateOrdersStatusResponse, error)
	ArchiveOrder(context.Context, *UpdateOrdersStatusRequest) (*UpdateOrdersStatusResponse, error)
	CancelOrder(context.Context, *UpdateOrdersStatusRequest) (*UpdateOrdersStatusResponse, error)
	ApplyDiscountCode(context.Context, *ApplyDiscountCodeRequest) (*ApplyDiscountCodeResponse, error)
	CreateOrders(context.Context, *CreateOrdersRequest) (*CreateOrdersResponse, error)
	ConfirmCheckout(context.Context, *ConfirmCheckoutRequest) (*CreateOrdersResponse, error)
	ChangeShift(context.Context, *ChangeShiftRequest) (*ChangeShiftResponse, error)
	mustEmbedUnimplementedOrderingServiceServer()
}

// UnimplementedOrderingServiceServer must be embedded by implementations.
type UnimplementedOrderingServiceServer struct{}

func (UnimplementedOrderingServiceServer) GetCustomer(context.Context, *GetCustomerRequest) (*GetCustomerResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCustomer not implemented")
}
func (UnimplementedOrderingServiceServer) ListUpcomingOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListUpcomingOrders not implemented")
}
func (UnimplementedOrderingServiceServer) ListDeliveredOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListDeliveredOrders not implemented")
}
func (UnimplementedOrderingServiceServer) DeliverOrders(context.Context, *UpdateOrdersStatusRequest) (*UpdateOrdersStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeliverOrders not implemented")
}
func (UnimplementedOrderingServiceServer) ArchiveOrder(context.Context, *UpdateOrdersStatusRequest) (*UpdateOrdersStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ArchiveOrder not implemented")
}
func (UnimplementedOrderingServiceServer) CancelOrder(context.Context, *UpdateOrdersStatusRequest) (*UpdateOrdersStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelOrder not implemented")
}
func (UnimplementedOrderingServiceServer) ApplyDiscountCode(context.Context, *ApplyDiscountCodeRequest) (*ApplyDiscountCodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ApplyDiscountCode not implemented")
}
func (UnimplementedOrderingServiceServer) CreateOrders(context.Context, *CreateOrdersRequest) (*CreateOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOrders not implemented")
}
func (UnimplementedOrderingServiceServer) ConfirmCheckout(context.Context, *ConfirmCheckoutRequest) (*CreateOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmCheckout not implemented")
}
func (UnimplementedOrderingServiceServer) ChangeShift(context.Context, *ChangeShiftRequest) (*ChangeShiftResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangeShift not implemented")
}
func (UnimplementedOrderingServiceServer) mustEmbedUnimplementedOrderingServiceServer() {}

func unary[Req, Resp any](name string, call func(OrderingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OrderingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(OrderingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var OrderingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetCustomer", OrderingServiceServer.GetCustomer),
		unary("ListUpcomingOrders", OrderingServiceServer.ListUpcomingOrders),
		unary("ListDeliveredOrders", OrderingServiceServer.ListDeliveredOrders),
		unary("DeliverOrders", OrderingServiceServer.DeliverOrders),
		unary("ArchiveOrder", OrderingServiceServer.ArchiveOrder),
		unary("CancelOrder", OrderingServiceServer.CancelOrder),
		unary("ApplyDiscountCode", OrderingServiceServer.ApplyDiscountCode),
		unary("CreateOrders", OrderingServiceServer.CreateOrders),
		unary("ConfirmCheckout", OrderingServiceServer.ConfirmCheckout),
		unary("ChangeShift", OrderingServiceServer.ChangeShift),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ordering",
}

func RegisterOrderingServiceServer(s grpc.ServiceRegistrar, srv OrderingServiceServer) {
	s.RegisterService(&OrderingService_ServiceDesc, srv)
}

type OrderingServiceClient interface {
	GetCustomer(ctx context.Context, in *GetCustomerRequest, opts ...grpc.CallOption) (*GetCustomerResponse, error)
	ListUpcomingOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
	ListDeliveredOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
	DeliverOrders(ctx context.Context, in *UpdateOrdersStatusRequest, opts ...grpc.CallOption) (*UpdateOrdersStatusResponse, error)
	ArchiveOrder(ctx context.Context, in *UpdateOrdersStatusRequest, opts ...grpc.CallOption) (*UpdateOrdersStatusResponse, error)
	CancelOrder(ctx context.Context, in *UpdateOrdersStatusRequest, opts ...grpc.CallOption) (*UpdateOrdersStatusResponse, error)
	ApplyDiscountCode(ctx context.Context, in *ApplyDiscountCodeRequest, opts ...grpc.CallOption) (*ApplyDiscountCodeResponse, error)
	CreateOrders(ctx context.Context, in *CreateOrdersRequest, opts ...grpc.CallOption) (*CreateOrdersResponse, error)
	ConfirmCheckout(ctx context.Context, in *ConfirmCheckoutRequest, opts ...grpc.CallOption) (*CreateOrdersResponse, error)
	ChangeShift(ctx context.Context, in *ChangeShiftRequest, opts ...grpc.CallOption) (*ChangeShiftResponse, error)
}

type orderingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderingServiceClient(cc grpc.ClientConnInterface) OrderingServiceClient {
	return &orderingServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderingServiceClient) GetCustomer(ctx context.Context, in *GetCustomerRequest, opts ...grpc.CallOption) (*GetCustomerResponse, error) {
	return invoke[GetCustomerResponse](ctx, c.cc, "GetCustomer", in, opts)
}

func (c *orderingServiceClient) ListUpcomingOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return invoke[ListOrdersResponse](ctx, c.cc, "ListUpcomingOrders", in, opts)
}

func (c *orderingServiceClient) ListDeliveredOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return invoke[ListOrdersResponse](ctx, c.cc, "ListDeliveredOrders", in, opts)
}

func (c *orderingServiceClient) DeliverOrders(ctx context.Context, in *UpdateOrdersStatusRequest, opts ...grpc.CallOption) (*UpdateOrdersStatusResponse, error) {
	return invoke[UpdateOrdersStatusResponse](ctx, c.cc, "DeliverOrders", in, opts)
}

func (c *orderingServiceClient) ArchiveOrder(ctx context.Context, in *UpdateOrdersStatusRequest, opts ...grpc.CallOption) (*UpdateOrdersStatusResponse, error) {
	return invoke[UpdateOrdersStatusResponse](ctx, c.cc, "ArchiveOrder", in, opts)
}

func (c *orderingServiceClient) CancelOrder(ctx context.Context, in *UpdateOrdersStatusRequest, opts ...grpc.CallOption) (*UpdateOrdersStatusResponse, error) {
	return invoke[UpdateOrdersStatusResponse](ctx, c.cc, "CancelOrder", in, opts)
}

func (c *orderingServiceClient) ApplyDiscountCode(ctx context.Context, in *ApplyDiscountCodeRequest, opts ...grpc.CallOption) (*ApplyDiscountCodeResponse, error) {
	return invoke[ApplyDiscountCodeResponse](ctx, c.cc, "ApplyDiscountCode", in, opts)
}

func (c *orderingServiceClient) CreateOrders(ctx context.Context, in *CreateOrdersRequest, opts ...grpc.CallOption) (*CreateOrdersResponse, error) {
	return invoke[CreateOrdersResponse](ctx, c.cc, "CreateOrders", in, opts)
}

func (c *orderingServiceClient) ConfirmCheckout(ctx context.Context, in *ConfirmCheckoutRequest, opts ...grpc.CallOption) (*CreateOrdersResponse, error) {
	return invoke[CreateOrdersResponse](ctx, c.cc, "ConfirmCheckout", in, opts)
}

func (c *orderingServiceClient) ChangeShift(ctx context.Context, in *ChangeShiftRequest, opts ...grpc.CallOption) (*ChangeShiftResponse, error) {
	return invoke[ChangeShiftResponse](ctx, c.cc, "ChangeShift", in, opts)
}
