// Package backup exports the vault's account records to S3-compatible
// object storage and reads them back.
//
// A backup holds exactly what the local database holds: ciphertext,
// never plaintext keys, and never the remembered session PIN. External
// signer accounts carry no key material at all. Objects are written under
// backups/<yyyy>/<mm>/<dd>/<uuid>.json.
package backup
