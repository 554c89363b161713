package billing

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype the billing service speaks. Messages
// are the plain JSON encodings of AccountRequest and AccountResponse.
const CodecName = "json"

const (
	grpcServiceName = "billing.BillingService"
	createMethod    = "/" + grpcServiceName + "/CreateBillingAccount"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

// BillingServer is the gRPC surface of the billing service.
type BillingServer interface {
	CreateBillingAccount(ctx context.Context, req *AccountRequest) (*AccountResponse, error)
}

type grpcServer struct {
	svc *Service
}

func (g grpcServer) CreateBillingAccount(ctx context.Context, req *AccountRequest) (*AccountResponse, error) {
	resp := g.svc.CreateBillingAccount(ctx, *req)
	return &resp, nil
}

func createHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AccountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BillingServer).CreateBillingAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BillingServer).CreateBillingAccount(ctx, req.(*AccountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: grpcServiceName,
	HandlerType: (*BillingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateBillingAccount", Handler: createHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "billing.proto",
}

// RegisterGRPC exposes svc on s.
func RegisterGRPC(s grpc.ServiceRegistrar, svc *Service) {
	s.RegisterService(&serviceDesc, grpcServer{svc: svc})
}

// GRPCClient calls a remote billing service over an established connection.
type GRPCClient struct {
	cc grpc.ClientConnInterface
}

func NewGRPCClient(cc grpc.ClientConnInterface) *GRPCClient {
	return &GRPCClient{cc: cc}
}

func (c *GRPCClient) CreateBillingAccount(ctx context.Context, req *AccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	out := new(AccountResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, createMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
