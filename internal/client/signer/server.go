package signer

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Service is implemented by an external signer. Returning an error that
// wraps ErrSignerRejected tells the client the request was declined.
type Service interface {
	Sign(ctx context.Context, req SignRequest) ([]byte, error)
}

// signerServer is the handler type registered with grpc.
type signerServer interface {
	sign(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error)
}

type server struct {
	svc           Service
	pairingSecret []byte
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*signerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Sign", Handler: signHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hivekeeper/signer/v1/signer.proto",
}

// Register exposes svc as the external signer on s. Requests must carry a
// pairing token signed with pairingSecret for the requested username.
func Register(s *grpc.Server, svc Service, pairingSecret []byte) {
	s.RegisterService(&serviceDesc, &server{svc: svc, pairingSecret: common.CloneBytes(pairingSecret)})
}

func signHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(signerServer).sign(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SignMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(signerServer).sign(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func (s *server) sign(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.SignerTokenHeaderName); len(values) > 0 {
			token = values[0]
		}
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := ValidatePairingToken(token, s.pairingSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	req, err := decodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if claims.Subject != req.Username || claims.Tier != string(req.Tier) {
		return nil, status.Error(codes.PermissionDenied, "token issued for another account")
	}

	sig, err := s.svc.Sign(ctx, req)
	switch {
	case err == nil:
		return wrapperspb.Bytes(sig), nil
	case errors.Is(err, ErrSignerRejected):
		return nil, status.Error(codes.PermissionDenied, err.Error())
	default:
		return nil, status.Error(codes.Internal, err.Error())
	}
}
