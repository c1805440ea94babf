package commands

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/cryptox"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
	"github.com/spf13/cobra"
)

func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the address and public key held in the key file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			passphrase, err := opts.passphraseFor(out, "Passphrase: ")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(passphrase)

			km, err := cryptox.ReadKeyFile(opts.keyFile, passphrase)
			if err != nil {
				return err
			}
			defer km.Wipe()

			id, err := identity.New(km.SigningKey, km.EncryptionKey)
			if err != nil {
				return err
			}
			return printIdentity(out, id)
		},
	}
}

func printIdentity(w io.Writer, id *identity.Identity) error {
	node, err := id.Derive(common.MetadataTypeContacts)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Address:       %s\n", id.ID())
	fmt.Fprintf(w, "Public key:    %s\n", id.KeyAgreement().PublicKey())
	fmt.Fprintf(w, "Contacts node: %s\n", node.ID())
	return nil
}
