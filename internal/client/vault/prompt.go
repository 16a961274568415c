package vault

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
)

// PromptKind is what the user is asked to enter.
type PromptKind int

const (
	// PromptPIN asks for the PIN that unlocks the stored key.
	PromptPIN PromptKind = iota + 1
	// PromptRawKey asks for the private key itself (active/owner tier).
	PromptRawKey
)

func (k PromptKind) String() string {
	switch k {
	case PromptPIN:
		return "pin"
	case PromptRawKey:
		return "raw_key"
	default:
		return "unknown"
	}
}

// PromptRequest describes one secret prompt.
type PromptRequest struct {
	// ID correlates every attempt of one authorization.
	ID string

	Kind     PromptKind
	Username string
	Tier     models.KeyTier

	// Attempt starts at 1. LastErr is the reason the previous attempt was
	// rejected, so the UI can keep the dialog open and show it.
	Attempt int
	LastErr error

	// AllowRemember is false for requests whose answer is never cached.
	AllowRemember bool
}

// PromptResponse is what the user submitted. The negotiator wipes Value
// once it is done with it.
type PromptResponse struct {
	Value    []byte
	Remember bool
}

// Prompter solicits a secret from the user. It returns ErrCancelled when
// the user dismisses the prompt and should give up when ctx is done.
type Prompter interface {
	RequestSecret(ctx context.Context, req PromptRequest) (PromptResponse, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, req PromptRequest) (PromptResponse, error)

func (f PrompterFunc) RequestSecret(ctx context.Context, req PromptRequest) (PromptResponse, error) {
	return f(ctx, req)
}

// PendingPrompt is one open prompt of an AsyncPrompter. It is resolved
// exactly once, by Submit or Cancel; later calls are ignored.
type PendingPrompt struct {
	Request PromptRequest

	once   sync.Once
	result chan promptResult
}

type promptResult struct {
	resp PromptResponse
	err  error
}

// Submit resolves the prompt with the user's input.
func (p *PendingPrompt) Submit(value []byte, remember bool) {
	p.resolve(promptResult{resp: PromptResponse{Value: append([]byte(nil), value...), Remember: remember}})
}

// Cancel resolves the prompt as dismissed.
func (p *PendingPrompt) Cancel() {
	p.resolve(promptResult{err: ErrCancelled})
}

func (p *PendingPrompt) resolve(r promptResult) {
	p.once.Do(func() {
		p.result <- r
	})
}

// AsyncPrompter is the Prompter for event-driven UIs that cannot block in
// RequestSecret. Each request is published on Requests and waits until the
// UI calls Submit or Cancel on it, or ctx is done. A UI loop looks like:
//
//	ap := vault.NewAsyncPrompter(1)
//	ng := vault.NewNegotiator(store, cache, cipher, appSecret, ap)
//	go func() {
//		for pp := range ap.Requests() {
//			showDialog(pp.Request, pp.Submit, pp.Cancel)
//		}
//	}()
//
// The terminal client answers prompts inline and does not use it.
type AsyncPrompter struct {
	requests chan *PendingPrompt
}

// NewAsyncPrompter returns a prompter whose Requests channel holds up to
// buffer unread prompts.
func NewAsyncPrompter(buffer int) *AsyncPrompter {
	return &AsyncPrompter{requests: make(chan *PendingPrompt, buffer)}
}

// Requests delivers the prompts the UI has to show.
func (a *AsyncPrompter) Requests() <-chan *PendingPrompt {
	return a.requests
}

func (a *AsyncPrompter) RequestSecret(ctx context.Context, req PromptRequest) (PromptResponse, error) {
	p := &PendingPrompt{Request: req, result: make(chan promptResult, 1)}

	select {
	case a.requests <- p:
	case <-ctx.Done():
		return PromptResponse{}, ctx.Err()
	}

	select {
	case r := <-p.result:
		return r.resp, r.err
	case <-ctx.Done():
		p.Cancel()
		return PromptResponse{}, ctx.Err()
	}
}
