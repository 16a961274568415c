// Package signer talks to the external signer: a trusted local agent that
// holds keys outside the vault and signs on request.
//
// The wire protocol is one unary gRPC method,
// /hivekeeper.signer.v1.ExternalSigner/Sign, carrying protobuf well-known
// types so no generated code is needed on either side: the request is a
// google.protobuf.Struct with "username", "tier" and base64 "payload"
// fields, the reply a google.protobuf.BytesValue with the signature.
//
// Every call carries a short-lived HS256 pairing token in the
// "signer_token" metadata key. Its subject is the account the signature is
// requested for, so a signer refuses tokens minted for someone else.
//
// Errors are mapped to ErrSignerUnavailable and ErrSignerRejected; match
// them with errors.Is.
package signer
