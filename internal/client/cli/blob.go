package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/services"
	"github.com/spf13/cobra"
)

func (c *commands) cvCommand() *cobra.Command {
	var mimeType, out string

	fetch := &cobra.Command{
		Use:   "fetch <blobId>",
		Short: "Download and decrypt an applicant's CV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.fetchCV(cmd.Context(), args[0], mimeType, out)
		},
	}
	fetch.Flags().StringVar(&mimeType, "type", services.DefaultCVMIMEType, "declared MIME type of the CV")
	fetch.Flags().StringVarP(&out, "out", "o", "", "write the CV to this file instead of stdout")

	cmd := &cobra.Command{Use: "cv", Short: "Work with encrypted CVs"}
	cmd.AddCommand(fetch)
	return cmd
}

func (a *App) fetchCV(ctx context.Context, blobID, mimeType, out string) error {
	doc, err := a.retrieval.RetrieveCV(ctx, blobID, mimeType)
	if err != nil {
		return err
	}

	return a.save(out, doc.MIMEType, doc.Data)
}

// save writes data to stdout when out is empty or "-".
func (a *App) save(out, mimeType string, data []byte) error {
	if out == "" || out == "-" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(a.out, "Saved %s (%s, %d bytes)\n", out, mimeType, len(data))
	return nil
}

func (c *commands) blobCommand() *cobra.Command {
	var out string
	get := &cobra.Command{
		Use:   "get <blobId>",
		Short: "Download an unencrypted blob such as a pod logo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.app.retrieval.FetchAttachment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.app.save(out, blobstore.DetectMIME(data), data)
		},
	}
	get.Flags().StringVarP(&out, "out", "o", "", "write the blob to this file instead of stdout")

	cmd := &cobra.Command{Use: "blob", Short: "Inspect stored blobs"}
	cmd.AddCommand(
		get,
		&cobra.Command{
			Use:   "exists <blobId>",
			Short: "Report whether a blob is retrievable",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if c.app.store.Exists(cmd.Context(), args[0]) {
					fmt.Fprintln(c.app.out, "yes")
				} else {
					fmt.Fprintln(c.app.out, "no")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "url <blobId>",
			Short: "Print the public read URL of a blob",
			Args:  cobra.ExactArgs(1),
			Run: func(_ *cobra.Command, args []string) {
				fmt.Fprintln(c.app.out, c.app.store.BlobURL(args[0]))
			},
		},
	)
	return cmd
}
