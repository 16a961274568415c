package signerd

import (
	"context"
	"crypto/ed25519"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/client/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", testLogger, NewKeyring(testSeed, nil, 0, testLogger), "secret")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", testLogger, NewKeyring(testSeed, nil, 0, testLogger), "secret")

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestServe_SignsForPairedClient(t *testing.T) {
	kr := NewKeyring(testSeed, []string{"carol"}, 1024, testLogger)
	srv := NewGRPCServer("bufnet", testLogger, kr, "shared")

	ctx, cancel := context.WithCancel(context.Background())
	lis := bufconn.Listen(1 << 20)
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	dial := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})

	client, err := signer.NewGRPCSigner("passthrough:///bufnet", []byte("shared"), time.Minute, dial)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sig, err := client.Sign(context.Background(), "carol", models.TierPosting, []byte("vote"))
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(kr.PublicKey("carol", models.TierPosting), []byte("vote"), sig))

	_, err = client.Sign(context.Background(), "mallory", models.TierPosting, []byte("vote"))
	require.ErrorIs(t, err, signer.ErrSignerRejected)

	wrong, err := signer.NewGRPCSigner("passthrough:///bufnet", []byte("other"), time.Minute, dial)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wrong.Close() })
	_, err = wrong.Sign(context.Background(), "carol", models.TierPosting, []byte("vote"))
	require.Error(t, err)
}
