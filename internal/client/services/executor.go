package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/podguild/internal/client/chain"
	"github.com/dmitrijs2005/podguild/internal/common"
)

// executor runs one move call through the gateway and normalizes its errors:
// anything before a digest exists is a submission failure, anything after it
// is a confirmation timeout unless the chain reported the transaction failed.
type executor struct {
	gateway chain.Gateway
	network string
}

func (e *executor) submit(ctx context.Context, signer chain.Signer, call chain.MoveCall) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrSubmission, err)
	}
	digest, err := e.gateway.Execute(ctx, signer, call)
	if err != nil {
		if errors.Is(err, common.ErrSubmission) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", common.ErrSubmission, err)
	}
	if digest == "" {
		return "", fmt.Errorf("%w: gateway returned no digest", common.ErrSubmission)
	}
	return digest, nil
}

func (e *executor) confirm(ctx context.Context, digest string) error {
	err := e.gateway.WaitForTransaction(ctx, digest)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrConfirmationTimeout), errors.Is(err, common.ErrSubmission):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", common.ErrConfirmationTimeout, digest, err)
	}
}

func (e *executor) txURL(digest string) string {
	return chain.TxURL(e.network, digest)
}
