package signer

import (
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "hivekeeper.signer.v1.ExternalSigner"
	// SignMethod is the full method name of the Sign call.
	SignMethod = "/" + ServiceName + "/Sign"
)

// SignRequest is the decoded form of the Sign request.
type SignRequest struct {
	Username string
	Tier     models.KeyTier
	Payload  []byte
}

func encodeRequest(r SignRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"username": r.Username,
		"tier":     string(r.Tier),
		"payload":  base64.StdEncoding.EncodeToString(r.Payload),
	})
}

func decodeRequest(s *structpb.Struct) (SignRequest, error) {
	fields := s.GetFields()

	username := fields["username"].GetStringValue()
	if username == "" {
		return SignRequest{}, fmt.Errorf("missing username")
	}

	tier, err := models.ParseKeyTier(fields["tier"].GetStringValue())
	if err != nil {
		return SignRequest{}, err
	}

	payload, err := base64.StdEncoding.DecodeString(fields["payload"].GetStringValue())
	if err != nil {
		return SignRequest{}, fmt.Errorf("payload: %w", err)
	}

	return SignRequest{Username: username, Tier: tier, Payload: payload}, nil
}
