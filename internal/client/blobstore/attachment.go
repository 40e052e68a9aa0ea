package blobstore

import (
	"fmt"
	"mime"
	"strings"

	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/common"
	"github.com/gabriel-vasile/mimetype"
	validation "github.com/jellydator/validation"
)

const (
	MaxAttachmentSize = 10 << 20
	MaxImageSize      = 2 << 20
)

// AllowedAttachmentTypes lists the declared MIME types accepted for CVs.
var AllowedAttachmentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"application/octet-stream",
}

var imageType = validation.By(func(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "image/") {
		return validation.NewError("validation_image_type", "must be an image type")
	}
	return nil
})

// ValidateAttachment checks a CV attachment before any network call.
func ValidateAttachment(a *models.Attachment) error {
	if a == nil {
		return fmt.Errorf("%w: attachment is missing", common.ErrValidation)
	}

	allowed := make([]any, len(AllowedAttachmentTypes))
	for i, t := range AllowedAttachmentTypes {
		allowed[i] = t
	}

	err := validation.Errors{
		"type": validation.Validate(BaseMIME(a.MIMEType),
			validation.Required.Error("type is required"),
			validation.In(allowed...).Error("must be PDF, Word or plain text"),
		),
		"size": validation.Validate(a.Size(),
			validation.Max(int64(MaxAttachmentSize)).Error("must be at most 10 MiB"),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: attachment %q: %w", common.ErrValidation, a.Name, err)
	}
	return nil
}

// ValidateImage checks a pod logo before upload.
func ValidateImage(a *models.Attachment) error {
	if a == nil {
		return fmt.Errorf("%w: image is missing", common.ErrValidation)
	}

	err := validation.Errors{
		"type": validation.Validate(BaseMIME(a.MIMEType), validation.Required, imageType),
		"size": validation.Validate(a.Size(),
			validation.Max(int64(MaxImageSize)).Error("must be at most 2 MiB"),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: image %q: %w", common.ErrValidation, a.Name, err)
	}
	return nil
}

// DetectMIME sniffs the content type of data, without parameters.
func DetectMIME(data []byte) string {
	return BaseMIME(mimetype.Detect(data).String())
}

// BaseMIME strips parameters such as "; charset=utf-8" and lowercases t.
func BaseMIME(t string) string {
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		base, _, _ := strings.Cut(t, ";")
		return strings.ToLower(strings.TrimSpace(base))
	}
	return mt
}
