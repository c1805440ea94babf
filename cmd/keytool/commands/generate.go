package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/cryptox"
	"github.com/dmitrijs2005/walletmeta/internal/filex"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/spf13/cobra"
)

func generateCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new identity and seal it into the key file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if _, err := os.Stat(opts.keyFile); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to overwrite", opts.keyFile)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			passphrase, err := opts.passphraseFor(out, "New passphrase: ")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(passphrase)
			if len(passphrase) == 0 {
				return errors.New("passphrase must not be empty")
			}
			if opts.passphrase == "" {
				confirm, err := opts.passphraseFor(out, "Repeat passphrase: ")
				if err != nil {
					return err
				}
				defer common.WipeByteArray(confirm)
				if !bytes.Equal(passphrase, confirm) {
					return errors.New("passphrases do not match")
				}
			}

			id, err := identity.Generate()
			if err != nil {
				return err
			}
			km := &cryptox.KeyMaterial{SigningKey: id.SigningKey(), EncryptionKey: id.EncryptionKey()}
			defer km.Wipe()

			if _, err := filex.EnsureParentDir(opts.keyFile); err != nil {
				return err
			}
			if err := cryptox.WriteKeyFile(opts.keyFile, km, passphrase); err != nil {
				return err
			}

			fmt.Fprintf(out, "Key file written to %s\n", opts.keyFile)
			return printIdentity(out, id)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key file")
	return cmd
}
