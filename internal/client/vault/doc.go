// Package vault is the local multi-account credential vault.
//
// It is made of three cooperating parts:
//
//   - Store: the ordered list of known accounts and the current one.
//     Every mutation goes through a single choke point that clears the
//     session cache before anything else happens.
//   - SessionCache: at most one remembered PIN, kept in memory only and
//     sealed under the application secret.
//   - Negotiator: decides per requested tier whether the cached PIN is
//     enough, a fresh secret must be prompted for, or signing is delegated
//     to the external signer. Only one authorization may wait on the
//     prompt at a time.
//
// The negotiator talks to the user through a Prompter. Blocking UIs such
// as a terminal implement it directly; event-driven UIs (a GUI dialog, a
// browser extension popup) use AsyncPrompter and answer the PendingPrompt
// values it publishes.
//
// The package performs no logging; outcomes are returned to the caller
// as sentinel errors matched with errors.Is.
package vault
