package cli

import (
	"time"

	"github.com/dmitrijs2005/podguild/internal/client/repositories/activity"
	"github.com/spf13/cobra"
)

func (c *commands) historyCommand() *cobra.Command {
	var limit int
	var orphans bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show local activity, or blobs left unreferenced by failed attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			repo := c.app.repos.Activity

			if orphans {
				blobs, err := repo.OrphanBlobs(ctx)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(blobs))
				for _, b := range blobs {
					rows = append(rows, []string{b.BlobID, b.AttemptID, b.CreatedAt.Local().Format(time.DateTime)})
				}
				printTable(c.app.out, []string{"Blob", "Attempt", "Created"}, rows)
				return nil
			}

			items, err := repo.List(ctx, limit)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, a := range items {
				orphan := ""
				if a.Orphaned {
					orphan = "orphaned"
				}
				rows = append(rows, []string{
					a.CreatedAt.Local().Format(time.DateTime), string(a.Kind), a.Status,
					a.ErrorKind, a.Digest, a.BlobID, orphan,
				})
			}
			printTable(c.app.out, []string{"When", "Kind", "Status", "Error", "Digest", "Blob", ""}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", activity.DefaultListLimit, "maximum number of records")
	cmd.Flags().BoolVar(&orphans, "orphans", false, "list orphaned blobs instead")
	return cmd
}
