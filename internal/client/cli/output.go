package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dmitrijs2005/hivekeeper/internal/client/backup"
	"github.com/dmitrijs2005/hivekeeper/internal/client/services"
	"github.com/dmitrijs2005/hivekeeper/internal/client/signer"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/fatih/color"
)

func printOK(w io.Writer, msg string) {
	fmt.Fprintln(w, color.GreenString("✓")+" "+msg)
}

func printHint(w io.Writer, msg string) {
	fmt.Fprintln(w, color.CyanString("→")+" "+msg)
}

func printUsage(w io.Writer, usage string) {
	fmt.Fprintln(w, color.YellowString("!")+" Usage: "+usage)
}

// printError reports err and, for errors the user can act on, what to do.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, color.RedString("✗")+" "+err.Error())

	switch {
	case errors.Is(err, vault.ErrLoginRequired):
		printHint(w, "Run "+color.YellowString("import")+" or "+color.YellowString("switch")+" first")
	case errors.Is(err, vault.ErrDecryptionFailed):
		printHint(w, "The stored key is unreadable, "+color.YellowString("import")+" the account again")
	case errors.Is(err, vault.ErrAuthorizationInProgress):
		printHint(w, "Finish the pending prompt first")
	case errors.Is(err, common.ErrorIncorrectTier):
		printHint(w, "Tiers are posting, active, memo and owner")
	case errors.Is(err, backup.ErrNotConfigured):
		printHint(w, "Set "+color.YellowString("s3.bucket")+" in the config file")
	case errors.Is(err, services.ErrUnprotectedBackup):
		printHint(w, "Set "+color.YellowString("app_secret")+" in the config file or re-import the key with a PIN")
	case errors.Is(err, services.ErrSignerNotConfigured):
		printHint(w, "Set "+color.YellowString("signer_endpoint_addr")+" in the config file")
	case errors.Is(err, signer.ErrSignerUnavailable):
		printHint(w, "Check that the external signer is running")
	}
}

// startSpinner shows message with a spinner on w until the returned stop
// function is called. Nothing is drawn when w is not a terminal.
func startSpinner(w io.Writer, message string) func() {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	_ = s.Color("cyan")
	s.Start()
	return s.Stop
}
