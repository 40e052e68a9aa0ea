package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/spf13/cobra"
)

func (c *commands) podCommand() *cobra.Command {
	var form models.PodForm
	var imagePath string

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a pod, optionally with a logo image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.createPod(cmd.Context(), form, imagePath)
		},
	}
	create.Flags().StringVar(&form.Name, "name", "", "pod name")
	create.Flags().StringVar(&form.Description, "description", "", "pod description")
	create.Flags().StringVar(&form.Category, "category", "", "pod category (default Other)")
	create.Flags().StringVar(&imagePath, "image", "", "logo image file")

	join := &cobra.Command{
		Use:   "join <podId>",
		Short: "Join a pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := c.app.unlock(ctx)
			if err != nil {
				return err
			}
			res, err := c.app.pods.JoinPod(ctx, session, args[0])
			return reportTx(c.app.out, "Join", res, err)
		},
	}

	cmd := &cobra.Command{Use: "pod", Short: "Create and join pods"}
	cmd.AddCommand(create, join)
	return cmd
}

func (a *App) createPod(ctx context.Context, form models.PodForm, imagePath string) error {
	if imagePath != "" {
		img, err := readAttachment(imagePath, "", blobstore.MaxImageSize)
		if err != nil {
			return err
		}
		form.Image = img
	}

	session, err := a.unlock(ctx)
	if err != nil {
		return err
	}

	res, err := a.pods.CreatePod(ctx, session, form)
	return reportTx(a.out, "Pod", res, err)
}

type jobFlags struct {
	form     models.JobForm
	jobType  string
	deadline string
}

func (c *commands) jobCommand() *cobra.Command {
	var f jobFlags

	post := &cobra.Command{
		Use:   "post",
		Short: "Post a job to a pod",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.postJob(cmd.Context(), f)
		},
	}
	fl := post.Flags()
	fl.StringVar(&f.form.PodID, "pod", "", "pod object id")
	fl.StringVar(&f.form.Title, "title", "", "job title")
	fl.StringVar(&f.form.Description, "description", "", "job description")
	fl.StringVar(&f.form.Requirements, "requirements", "", "requirements")
	fl.Uint64Var(&f.form.Salary, "salary", 0, "salary, 0 for none")
	fl.StringVar(&f.deadline, "deadline", "", "application deadline (YYYY-MM-DD)")
	fl.StringVar(&f.jobType, "type", models.JobTypeFullTime.String(), "full-time, part-time, contract, freelance or internship")
	fl.StringVar(&f.form.CompanyName, "company", "", "company name")
	fl.StringVar(&f.form.CompanyLogoURL, "company-logo", "", "company logo URL")
	fl.StringVar(&f.form.Location, "location", "", "location")
	fl.StringSliceVar(&f.form.Skills, "skill", nil, "required skill (repeatable)")

	cmd := &cobra.Command{Use: "job", Short: "Post jobs"}
	cmd.AddCommand(post)
	return cmd
}

func (a *App) postJob(ctx context.Context, f jobFlags) error {
	form := f.form

	jt, ok := models.ParseJobType(strings.ToLower(f.jobType))
	if !ok {
		return fmt.Errorf("%w: unknown job type %q", common.ErrValidation, f.jobType)
	}
	form.Type = jt

	if f.deadline != "" {
		d, err := time.Parse(time.DateOnly, f.deadline)
		if err != nil {
			return fmt.Errorf("%w: deadline: %w", common.ErrValidation, err)
		}
		form.DeadlineMs = uint64(d.UnixMilli())
	}

	session, err := a.unlock(ctx)
	if err != nil {
		return err
	}
	res, err := a.pods.PostJob(ctx, session, form)
	return reportTx(a.out, "Job", res, err)
}

func (c *commands) hireCommand() *cobra.Command {
	var form models.HireForm

	cmd := &cobra.Command{
		Use:   "hire",
		Short: "Hire the candidate of an application and mint their employment badge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := c.app.unlock(ctx)
			if err != nil {
				return err
			}
			res, err := c.app.pods.HireCandidate(ctx, session, form)
			return reportTx(c.app.out, "Hire", res, err)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&form.JobID, "job", "", "job posting object id")
	fl.StringVar(&form.ApplicationID, "application", "", "application object id")
	fl.StringVar(&form.Candidate, "candidate", "", "candidate address")
	fl.StringVar(&form.CompanyName, "company", "", "company name on the badge")
	fl.StringVar(&form.CompanyLogoURL, "company-logo", "", "company logo URL on the badge")
	return cmd
}
