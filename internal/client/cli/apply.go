package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/spf13/cobra"
)

type applyFlags struct {
	jobID           string
	podID           string
	coverLetter     string
	coverLetterFile string
	contact         string
	cvPath          string
	cvType          string
}

func (c *commands) applyCommand() *cobra.Command {
	var f applyFlags

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply to a job, optionally attaching an encrypted CV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.applyToJob(cmd.Context(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.jobID, "job", "", "job posting object id")
	fl.StringVar(&f.podID, "pod", "", "pod object id")
	fl.StringVar(&f.coverLetter, "cover-letter", "", "cover letter text")
	fl.StringVar(&f.coverLetterFile, "cover-letter-file", "", "read the cover letter from a file")
	fl.StringVar(&f.contact, "contact", "", "contact or portfolio URL")
	fl.StringVar(&f.cvPath, "cv", "", "CV file to encrypt and attach")
	fl.StringVar(&f.cvType, "cv-type", "", "CV MIME type (detected from the file when empty)")
	cmd.MarkFlagsMutuallyExclusive("cover-letter", "cover-letter-file")
	return cmd
}

func (a *App) applyToJob(ctx context.Context, f applyFlags) error {
	form := models.ApplicationForm{
		JobID:       f.jobID,
		PodID:       f.podID,
		CoverLetter: f.coverLetter,
		Contact:     f.contact,
	}

	switch {
	case f.coverLetterFile != "":
		b, err := os.ReadFile(f.coverLetterFile)
		if err != nil {
			return fmt.Errorf("read cover letter: %w", err)
		}
		form.CoverLetter = strings.TrimSpace(string(b))
	case form.CoverLetter == "":
		text, err := GetMultiline(a.reader, "Cover letter", a.out)
		if err != nil {
			return err
		}
		form.CoverLetter = text
	}

	if f.cvPath != "" {
		cv, err := readAttachment(f.cvPath, f.cvType, blobstore.MaxAttachmentSize)
		if err != nil {
			return err
		}
		form.CV = cv
	}

	session, err := a.unlock(ctx)
	if err != nil {
		return err
	}

	res, err := a.apply.Submit(ctx, session, form, stateObserver(a.out))
	return reportSubmission(a.out, res, err)
}

// readAttachment loads path into memory. Files larger than limit are rejected
// before they are read. An empty mimeType is sniffed from the file content.
func readAttachment(path, mimeType string, limit int64) (*models.Attachment, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", common.ErrValidation, path)
	}
	if fi.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", common.ErrValidation, path, fi.Size(), limit)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if mimeType == "" {
		mimeType = blobstore.DetectMIME(data)
	}
	return &models.Attachment{
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
