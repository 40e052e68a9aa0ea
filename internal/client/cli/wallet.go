package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/podguild/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/podguild/internal/client/wallet"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/spf13/cobra"
)

func (c *commands) walletCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the local Sui wallet",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Create a new wallet",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.walletNew(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "import <seed>",
			Short: "Import an Ed25519 seed (hex, or base64 as in the Sui keystore)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.walletImport(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "address",
			Short: "Print the wallet address",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				addr, err := c.app.activeAddress(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(c.app.out, addr)
				return nil
			},
		},
	)
	return cmd
}

func (a *App) walletNew(ctx context.Context) error {
	pw, err := a.password(true)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	s, err := wallet.Create(a.config.KeystorePath, pw)
	if err != nil {
		return a.walletError(err)
	}
	return a.rememberWallet(ctx, s.Address())
}

func (a *App) walletImport(ctx context.Context, seed string) error {
	pw, err := a.password(true)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	s, err := wallet.Import(a.config.KeystorePath, seed, pw)
	if err != nil {
		return a.walletError(err)
	}
	return a.rememberWallet(ctx, s.Address())
}

func (a *App) walletError(err error) error {
	if errors.Is(err, wallet.ErrKeystoreExists) {
		return fmt.Errorf("%w: %s (use --keystore to choose another file)", err, a.config.KeystorePath)
	}
	return err
}

func (a *App) rememberWallet(ctx context.Context, address string) error {
	if err := metadata.SetString(ctx, a.repos.Metadata, metadata.KeyActiveAddress, address); err != nil {
		return err
	}
	if err := metadata.SetString(ctx, a.repos.Metadata, metadata.KeyKeystorePath, a.config.KeystorePath); err != nil {
		return err
	}
	a.log.Info(ctx, "wallet stored", "address", address, "keystore", a.config.KeystorePath)
	fmt.Fprintf(a.out, "Address: %s\nKeystore: %s\n", address, a.config.KeystorePath)
	return nil
}

// activeAddress reads the address from the keystore without unlocking it,
// falling back to the last wallet remembered in the local database.
func (a *App) activeAddress(ctx context.Context) (string, error) {
	addr, err := wallet.ReadAddress(a.config.KeystorePath)
	if err == nil {
		return addr, nil
	}
	if !errors.Is(err, common.ErrNoSession) {
		return "", err
	}

	remembered, merr := metadata.GetString(ctx, a.repos.Metadata, metadata.KeyActiveAddress)
	if merr != nil {
		return "", merr
	}
	if remembered == "" {
		return "", fmt.Errorf("%w: run `podcli wallet new` or `podcli wallet import`", common.ErrNoSession)
	}
	return remembered, nil
}

// unlock opens the keystore and returns a signing session. A missing keystore
// yields a nil session so the services report the missing session themselves.
func (a *App) unlock(ctx context.Context) (*wallet.Session, error) {
	if _, err := wallet.ReadAddress(a.config.KeystorePath); errors.Is(err, common.ErrNoSession) {
		a.log.Warn(ctx, "no keystore", "path", a.config.KeystorePath)
		return nil, nil
	}

	pw, err := a.password(false)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pw)

	s, err := wallet.Unlock(a.config.KeystorePath, pw)
	if err != nil {
		return nil, err
	}
	return wallet.NewSession(s), nil
}
