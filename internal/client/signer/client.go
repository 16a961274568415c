package signer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultTokenTTL is used when no pairing token lifetime is configured.
const DefaultTokenTTL = 30 * time.Second

// Signer signs payloads for accounts whose keys live outside the vault.
type Signer interface {
	Sign(ctx context.Context, username string, tier models.KeyTier, payload []byte) ([]byte, error)
}

// GRPCSigner is the gRPC client of the external signer.
type GRPCSigner struct {
	endpointAddr  string
	conn          *grpc.ClientConn
	pairingSecret []byte
	tokenTTL      time.Duration
	callTimeout   time.Duration

	now func() time.Time
}

type ctxKey struct{}

// withAccount tells the interceptor which account the call is for.
func withAccount(ctx context.Context, key models.AccountKey) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

func withSignerToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SignerTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// pairingTokenInterceptor mints a fresh token for every call.
func (s *GRPCSigner) pairingTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	key, ok := ctx.Value(ctxKey{}).(models.AccountKey)
	if !ok {
		return fmt.Errorf("%s: no account in context", method)
	}

	token, err := GeneratePairingToken(key.Username, key.KeyTier, s.pairingSecret, s.tokenTTL, s.now())
	if err != nil {
		return err
	}

	return invoker(withSignerToken(ctx, token), method, req, reply, cc, opts...)
}

// NewGRPCSigner creates a client for the signer at endpointAddr. The
// connection is established lazily on the first call. Extra dial options
// are appended, which tests use to dial an in-memory listener.
func NewGRPCSigner(endpointAddr string, pairingSecret []byte, tokenTTL time.Duration, extra ...grpc.DialOption) (*GRPCSigner, error) {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	s := &GRPCSigner{
		endpointAddr:  endpointAddr,
		pairingSecret: common.CloneBytes(pairingSecret),
		tokenTTL:      tokenTTL,
		callTimeout:   2 * time.Minute,
		now:           time.Now,
	}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.pairingTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(endpointAddr, opts...)
	if err != nil {
		return nil, fmt.Errorf("signer client %s: %w", endpointAddr, err)
	}
	s.conn = conn
	return s, nil
}

// Sign asks the external signer to sign payload for (username, tier). The
// signer may take a while: it usually asks its user for confirmation.
func (s *GRPCSigner) Sign(ctx context.Context, username string, tier models.KeyTier, payload []byte) ([]byte, error) {
	req, err := encodeRequest(SignRequest{Username: username, Tier: tier, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode sign request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	ctx = withAccount(ctx, models.AccountKey{Username: username, KeyTier: tier})

	reply := &wrapperspb.BytesValue{}
	if err := s.conn.Invoke(ctx, SignMethod, req, reply); err != nil {
		return nil, mapError(err)
	}
	if len(reply.GetValue()) == 0 {
		return nil, fmt.Errorf("%w: empty signature", ErrSignerRejected)
	}
	return reply.GetValue(), nil
}

// Close releases the connection.
func (s *GRPCSigner) Close() error {
	return s.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrSignerRejected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrSignerUnavailable, st.Message())
	case codes.Canceled:
		return fmt.Errorf("%w: %w", context.Canceled, err)
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
