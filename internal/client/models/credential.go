package models

// Credential is the outcome of a successful authorization: either the
// plaintext private key, or an instruction to delegate signing to the
// external signer. Account is the account it was issued for.
type Credential struct {
	Account                  AccountKey
	PlaintextKey             []byte
	DelegateToExternalSigner bool
}

// Delegated is the credential returned for external signer accounts.
func Delegated(account AccountKey) Credential {
	return Credential{Account: account, DelegateToExternalSigner: true}
}

// Wipe zeroes the plaintext key held by the credential.
func (c *Credential) Wipe() {
	for i := range c.PlaintextKey {
		c.PlaintextKey[i] = 0
	}
	c.PlaintextKey = nil
}
