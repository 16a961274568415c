package common

// SignerTokenHeaderName is the gRPC metadata key used to carry the pairing
// token on outbound requests to the external signer.
const SignerTokenHeaderName = "signer_token"

// DefaultAppSecret is the fixed application-wide secret used for key
// material that is not PIN-protected and for wrapping the session PIN.
const DefaultAppSecret = "hivekeeper-application-secret-v1"
