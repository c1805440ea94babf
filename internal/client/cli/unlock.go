package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/cryptox"
	"github.com/dmitrijs2005/walletmeta/internal/identity"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Unlock prompts for the key file passphrase and loads the wallet identity.
// Key material is wiped once the identity is built.
func (a *App) Unlock(ctx context.Context) error {
	passphrase, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	km, err := cryptox.ReadKeyFile(a.config.KeyFile, passphrase)
	if err != nil {
		if errors.Is(err, cryptox.ErrWrongPassphrase) {
			a.logger.Warn(ctx, "unlock failed", "key_file", a.config.KeyFile)
		}
		return fmt.Errorf("unlock %s: %w", a.config.KeyFile, err)
	}
	defer km.Wipe()

	id, err := identity.New(km.SigningKey, km.EncryptionKey)
	if err != nil {
		return err
	}
	if err := a.useIdentity(ctx, id); err != nil {
		return err
	}

	a.logger.Info(ctx, "identity unlocked", "mdid", id.ID())
	return nil
}
