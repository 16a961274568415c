package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPrompter(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		req          vault.PromptRequest
		wantValue    string
		wantRemember bool
		wantErr      error
		wantOut      []string
	}{
		{
			name:         "pin remembered",
			input:        "1234\ny\n",
			req:          vault.PromptRequest{Kind: vault.PromptPIN, Username: "alice", Tier: models.TierPosting, Attempt: 1, AllowRemember: true},
			wantValue:    "1234",
			wantRemember: true,
			wantOut:      []string{"PIN for alice (posting)", "Remember the PIN"},
		},
		{
			name:      "pin not remembered",
			input:     "1234\n\n",
			req:       vault.PromptRequest{Kind: vault.PromptPIN, Username: "alice", Tier: models.TierMemo, Attempt: 1, AllowRemember: true},
			wantValue: "1234",
		},
		{
			name:      "raw key never asks to remember",
			input:     wifAlice + "\ny\n",
			req:       vault.PromptRequest{Kind: vault.PromptRawKey, Username: "bob", Tier: models.TierActive, Attempt: 1},
			wantValue: wifAlice,
			wantOut:   []string{"Private key for bob (active)"},
		},
		{
			name:      "retry shows previous error",
			input:     "4321\n\n",
			req:       vault.PromptRequest{Kind: vault.PromptPIN, Username: "alice", Tier: models.TierPosting, Attempt: 2, LastErr: errors.New("wrong PIN"), AllowRemember: true},
			wantValue: "4321",
			wantOut:   []string{"wrong PIN (attempt 2)"},
		},
		{
			name:    "empty answer cancels",
			input:   "\n",
			req:     vault.PromptRequest{Kind: vault.PromptPIN, Username: "alice", Tier: models.TierPosting, Attempt: 1},
			wantErr: vault.ErrCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plainConsole(t)
			var out bytes.Buffer
			p := newTerminalPrompter(rdr(tt.input), &out)

			resp, err := p.RequestSecret(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, string(resp.Value))
			assert.Equal(t, tt.wantRemember, resp.Remember)
			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestTerminalPrompter_DoneContextCancels(t *testing.T) {
	plainConsole(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := newTerminalPrompter(rdr("1234\n"), &out).RequestSecret(ctx, vault.PromptRequest{Kind: vault.PromptPIN})
	require.ErrorIs(t, err, vault.ErrCancelled)
	assert.Empty(t, out.String())
}

func TestTerminalPrompter_ReadError(t *testing.T) {
	plainConsole(t)
	var out bytes.Buffer

	_, err := newTerminalPrompter(rdr(""), &out).RequestSecret(context.Background(), vault.PromptRequest{Kind: vault.PromptPIN})
	require.Error(t, err)
	assert.NotErrorIs(t, err, vault.ErrCancelled)
}
