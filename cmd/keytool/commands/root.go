// Package commands implements the keytool subcommands for creating and
// inspecting passphrase-sealed wallet key files.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type options struct {
	keyFile    string
	passphrase string
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "keytool",
		Short:        "Create and inspect walletmeta key files",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.keyFile, "key-file", "k", "wallet.key", "path to the key file")
	root.PersistentFlags().StringVarP(&opts.passphrase, "passphrase", "p", "", "key file passphrase (prompted when empty)")

	root.AddCommand(generateCmd(opts), showCmd(opts))
	return root
}

// passphraseFor returns the flag value or prompts for it on the terminal.
func (o *options) passphraseFor(w io.Writer, prompt string) ([]byte, error) {
	if o.passphrase != "" {
		return []byte(o.passphrase), nil
	}
	fmt.Fprint(w, prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
