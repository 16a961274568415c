package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/fatih/color"
)

var errPINMismatch = errors.New("PINs do not match")

func parseTier(s string) (models.KeyTier, error) {
	t, err := models.ParseKeyTier(s)
	if err != nil {
		return models.TierAny, fmt.Errorf("%w: %w", common.ErrorIncorrectTier, err)
	}
	return t, nil
}

// parseSelector reads "<username> [tier]"; a missing tier selects all.
func parseSelector(args []string) (string, models.KeyTier, error) {
	if len(args) == 2 {
		t, err := parseTier(args[1])
		return args[0], t, err
	}
	return args[0], models.TierAny, nil
}

// fail prints err and returns it, so handlers can end with return a.fail(err).
func (a *App) fail(err error) error {
	printError(a.out, err)
	return err
}

func (a *App) List(ctx context.Context) error {
	list := a.accounts.List(ctx)
	if len(list) == 0 {
		fmt.Fprintln(a.out, color.YellowString("!")+" No accounts yet")
		printHint(a.out, "Run "+color.YellowString("import <username> <tier>")+" to add one")
		return nil
	}

	cur, hasCur := a.accounts.Current(ctx)
	for _, acc := range list {
		marker := " "
		if hasCur && acc.Key() == cur.Key() {
			marker = color.GreenString("*")
		}

		how := "stored key"
		switch {
		case acc.IsExternalSigner():
			how = "external signer"
		case acc.IsPinProtected:
			how = "stored key, PIN"
		}
		fmt.Fprintf(a.out, "%s %-20s %-8s %s\n", marker, color.CyanString(acc.Username), acc.KeyTier, how)
	}
	return nil
}

func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 2 {
		printUsage(a.out, "import <username> <tier>")
		return nil
	}
	tier, err := parseTier(args[1])
	if err != nil {
		return a.fail(err)
	}

	key, err := GetSecret(a.reader, "Private key", a.out)
	if err != nil {
		return a.fail(err)
	}
	defer common.WipeByteArray(key)

	pin, err := GetSecret(a.reader, "PIN (empty to store without one)", a.out)
	if err != nil {
		return a.fail(err)
	}
	defer common.WipeByteArray(pin)

	if len(pin) > 0 {
		again, err := GetSecret(a.reader, "Repeat PIN", a.out)
		if err != nil {
			return a.fail(err)
		}
		same := string(again) == string(pin)
		common.WipeByteArray(again)
		if !same {
			return a.fail(errPINMismatch)
		}
	}

	if err := a.accounts.ImportKey(ctx, args[0], tier, key, pin); err != nil {
		return a.fail(err)
	}
	printOK(a.out, "Imported "+color.CyanString(args[0])+" ("+tier.String()+")")
	return nil
}

func (a *App) AddSigner(ctx context.Context, args []string) error {
	if len(args) != 2 {
		printUsage(a.out, "addsigner <username> <tier>")
		return nil
	}
	tier, err := parseTier(args[1])
	if err != nil {
		return a.fail(err)
	}
	if err := a.accounts.AddExternalSigner(ctx, args[0], tier); err != nil {
		return a.fail(err)
	}
	printOK(a.out, "Added "+color.CyanString(args[0])+" ("+tier.String()+"), signing is delegated")
	return nil
}

func (a *App) Switch(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		printUsage(a.out, "switch <username> [tier]")
		return nil
	}
	username, tier, err := parseSelector(args)
	if err != nil {
		return a.fail(err)
	}
	if err := a.accounts.Switch(ctx, username, tier); err != nil {
		return a.fail(err)
	}
	cur, _ := a.accounts.Current(ctx)
	printOK(a.out, "Switched to "+color.CyanString(cur.Key().String()))
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		printUsage(a.out, "remove <username> [tier]")
		return nil
	}
	username, tier, err := parseSelector(args)
	if err != nil {
		return a.fail(err)
	}
	if err := a.accounts.Remove(ctx, username, tier); err != nil {
		return a.fail(err)
	}
	printOK(a.out, "Removed "+color.CyanString(models.AccountKey{Username: username, KeyTier: tier}.String()))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.accounts.Logout(ctx); err != nil {
		return a.fail(err)
	}
	printOK(a.out, "Logged out")
	return nil
}

// Unlock authorizes tier and shows the fingerprint of the key, never the
// key itself.
func (a *App) Unlock(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printUsage(a.out, "unlock <tier>")
		return nil
	}
	return a.authorize(ctx, args[0], nil)
}

func (a *App) Sign(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printUsage(a.out, "sign <tier> <payload>")
		return nil
	}
	return a.authorize(ctx, args[0], []byte(strings.Join(args[1:], " ")))
}

func (a *App) authorize(ctx context.Context, tierArg string, payload []byte) error {
	tier, err := parseTier(tierArg)
	if err != nil {
		return a.fail(err)
	}

	// Delegated requests wait on the network; prompts must not be drawn
	// over by the spinner.
	stop := func() {}
	if cur, ok := a.accounts.Current(ctx); ok && cur.IsExternalSigner() && tier != models.TierOwner {
		stop = startSpinner(a.out, "Waiting for the external signer...")
	}
	res, err := a.signing.Sign(ctx, tier, payload, false)
	stop()
	if err != nil {
		return a.fail(err)
	}

	if res.Delegated {
		printOK(a.out, "Signed by the external signer for "+color.CyanString(res.Username))
		printHint(a.out, "Signature: "+hex.EncodeToString(res.Signature))
		return nil
	}
	printOK(a.out, "Authorized "+color.CyanString(res.Username)+" ("+res.Tier.String()+")")
	printHint(a.out, "Key fingerprint: "+color.YellowString(res.Fingerprint))
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	stop := startSpinner(a.out, "Uploading backup...")
	key, err := a.accounts.Backup(ctx)
	stop()
	if err != nil {
		return a.fail(err)
	}
	printOK(a.out, "Backup written")
	printHint(a.out, "Restore with "+color.YellowString("restore "+key))
	return nil
}

func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printUsage(a.out, "restore <key>")
		return nil
	}

	stop := startSpinner(a.out, "Downloading backup...")
	n, err := a.accounts.Restore(ctx, args[0])
	stop()
	if n > 0 {
		printOK(a.out, fmt.Sprintf("Restored %d account(s)", n))
	}
	if err != nil {
		return a.fail(err)
	}
	return nil
}
