package signer

import (
	"context"

	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"google.golang.org/grpc/metadata"
)

func withIncomingToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.SignerTokenHeaderName, token))
}
