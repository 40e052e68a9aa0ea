package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/olekukonko/tablewriter"
)

func printTable(w io.Writer, header []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.AppendBulk(rows)
	t.Render()
}

func stateObserver(w io.Writer) func(models.State) {
	return func(s models.State) {
		if s == models.StateIdle {
			return
		}
		fmt.Fprintf(w, "  ... %s\n", s)
	}
}

// reportSubmission prints the outcome of an application attempt. A confirmation
// timeout is reported as "submitted" with the digest to check, since the
// transaction may still land.
func reportSubmission(w io.Writer, res *models.SubmissionResult, err error) error {
	if res != nil && res.BlobID != "" {
		fmt.Fprintf(w, "CV blob:  %s\n", res.BlobID)
	}

	switch {
	case err == nil:
		fmt.Fprintf(w, "Application submitted.\nDigest:   %s\nExplorer: %s\n", res.Digest, res.TxURL)
		return nil
	case errors.Is(err, common.ErrConfirmationTimeout) && res != nil && res.Digest != "":
		fmt.Fprintf(w, "Submitted, but not confirmed yet. Check digest %s\nExplorer: %s\n", res.Digest, res.TxURL)
		return err
	}

	if res != nil && res.BlobID != "" && res.Digest == "" {
		fmt.Fprintf(w, "The uploaded CV blob %s is not referenced by any application.\n", res.BlobID)
	}
	if res != nil && res.FailedAt != "" {
		return fmt.Errorf("failed while %s: %w", res.FailedAt, err)
	}
	return err
}

// reportTx prints the outcome of a single-transaction flow.
func reportTx(w io.Writer, what string, res *models.TxResult, err error) error {
	if res != nil && res.LogoURL != "" {
		fmt.Fprintf(w, "Logo:     %s\n", res.LogoURL)
	}
	switch {
	case err == nil:
		fmt.Fprintf(w, "%s confirmed.\nDigest:   %s\nExplorer: %s\n", what, res.Digest, res.TxURL)
		return nil
	case errors.Is(err, common.ErrConfirmationTimeout) && res != nil:
		fmt.Fprintf(w, "%s submitted, but not confirmed yet. Check digest %s\nExplorer: %s\n", what, res.Digest, res.TxURL)
	}
	return err
}
