package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/fatih/color"
)

// terminalPrompter asks for PINs and keys on the console. An empty answer
// cancels the authorization.
type terminalPrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func newTerminalPrompter(reader *bufio.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{reader: reader, out: out}
}

func (p *terminalPrompter) RequestSecret(ctx context.Context, req vault.PromptRequest) (vault.PromptResponse, error) {
	if err := ctx.Err(); err != nil {
		return vault.PromptResponse{}, vault.ErrCancelled
	}

	if req.Attempt > 1 && req.LastErr != nil {
		fmt.Fprintf(p.out, "%s %v (attempt %d)\n", color.RedString("✗"), req.LastErr, req.Attempt)
	}

	what := "PIN"
	if req.Kind == vault.PromptRawKey {
		what = "Private key"
	}
	prompt := fmt.Sprintf("%s for %s (%s), empty to cancel", what, color.CyanString(req.Username), req.Tier)

	secret, err := GetSecret(p.reader, prompt, p.out)
	if err != nil {
		return vault.PromptResponse{}, fmt.Errorf("read secret: %w", err)
	}
	if len(secret) == 0 {
		return vault.PromptResponse{}, vault.ErrCancelled
	}

	resp := vault.PromptResponse{Value: secret}
	if req.AllowRemember {
		resp.Remember = Confirm(p.reader, "Remember the PIN until the account changes?", p.out)
	}
	return resp, nil
}
