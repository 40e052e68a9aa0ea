package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/spf13/cobra"
)

func (c *commands) podsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pods",
		Short: "List recently created pods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pods, err := c.app.queries.Pods(cmd.Context())
			if err != nil {
				return err
			}
			printTable(c.app.out, []string{"ID", "Name", "Category", "Members"}, podRows(pods))
			return nil
		},
	}
}

func (c *commands) jobsCommand() *cobra.Command {
	var podID string
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recently posted jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := c.app.queries.Jobs(cmd.Context(), podID)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(jobs))
			for _, j := range jobs {
				rows = append(rows, []string{
					j.ID, j.Title, j.CompanyName, j.Type.String(), salary(j.Salary),
					strings.Join(j.Skills, ","), created(j.CreatedMs),
				})
			}
			printTable(c.app.out, []string{"ID", "Title", "Company", "Type", "Salary", "Skills", "Posted"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&podID, "pod", "", "only jobs of this pod")
	return cmd
}

func (c *commands) applicationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "applications <jobId>",
		Short: "List the applications to a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apps, err := c.app.queries.JobApplications(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTable(c.app.out, []string{"ID", "Candidate", "Status", "Contact", "CV blob"}, applicationRows(apps))
			return nil
		},
	}
}

func (c *commands) profileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [address]",
		Short: "Show the pods, applications and badges owned by an address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var addr string
			if len(args) == 1 {
				addr = args[0]
			} else {
				a, err := c.app.activeAddress(ctx)
				if err != nil {
					return err
				}
				addr = a
			}

			objs, err := c.app.queries.UserObjects(ctx, addr)
			if err != nil {
				return err
			}

			out := c.app.out
			fmt.Fprintf(out, "Address: %s\n\nPods\n", addr)
			printTable(out, []string{"ID", "Name", "Category", "Members"}, podRows(objs.Pods))
			fmt.Fprintln(out, "\nApplications")
			printTable(out, []string{"ID", "Candidate", "Status", "Contact", "CV blob"}, applicationRows(objs.Applications))
			fmt.Fprintln(out, "\nBadges")
			rows := make([][]string, 0, len(objs.Badges))
			for _, b := range objs.Badges {
				rows = append(rows, []string{b.ID, b.CompanyName, b.JobTitle})
			}
			printTable(out, []string{"ID", "Company", "Job"}, rows)
			return nil
		},
	}
}

func podRows(pods []models.Pod) [][]string {
	rows := make([][]string, 0, len(pods))
	for _, p := range pods {
		rows = append(rows, []string{p.ID, p.Name, p.Category, strconv.FormatUint(p.MemberCount, 10)})
	}
	return rows
}

func applicationRows(apps []models.JobApplication) [][]string {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{a.ID, a.Candidate, a.Status.String(), a.Contact, a.EncryptedCVBlob})
	}
	return rows
}

func salary(v uint64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatUint(v, 10)
}

func created(ms uint64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(int64(ms)).UTC().Format(time.DateOnly)
}
