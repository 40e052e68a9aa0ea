package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/podguild/internal/client/blobstore"
	"github.com/dmitrijs2005/podguild/internal/client/models"
	"github.com/dmitrijs2005/podguild/internal/client/wallet"
	"github.com/dmitrijs2005/podguild/internal/common"
	validation "github.com/jellydator/validation"
)

const maxContactLength = 256

var notBlank = validation.By(func(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "must not be blank")
	}
	return nil
})

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrValidation, err)
}

func requireSession(s *wallet.Session) error {
	if !s.Active() {
		return fmt.Errorf("%w: %w", common.ErrValidation, common.ErrNoSession)
	}
	return nil
}

func validateApplication(s *wallet.Session, f models.ApplicationForm) error {
	if err := requireSession(s); err != nil {
		return err
	}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.JobID, validation.Required.Error("job is required"), notBlank),
		validation.Field(&f.PodID, validation.Required.Error("pod is required"), notBlank),
		validation.Field(&f.CoverLetter, validation.Required.Error("cover letter is required"), notBlank),
		validation.Field(&f.Contact, validation.RuneLength(0, maxContactLength)),
	)
	if err != nil {
		return wrapValidation(err)
	}
	if f.CV != nil {
		return blobstore.ValidateAttachment(f.CV)
	}
	return nil
}

func validatePod(s *wallet.Session, f models.PodForm) error {
	if err := requireSession(s); err != nil {
		return err
	}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error("pod name is required"), notBlank),
		validation.Field(&f.Description, validation.Required.Error("description is required"), notBlank),
	)
	if err != nil {
		return wrapValidation(err)
	}
	if f.Image != nil {
		return blobstore.ValidateImage(f.Image)
	}
	return nil
}

func validateJob(s *wallet.Session, f models.JobForm) error {
	if err := requireSession(s); err != nil {
		return err
	}
	return wrapValidation(validation.ValidateStruct(&f,
		validation.Field(&f.PodID, validation.Required.Error("pod is required")),
		validation.Field(&f.Title, validation.Required, notBlank),
		validation.Field(&f.Description, validation.Required, notBlank),
		validation.Field(&f.CompanyName, validation.Required, notBlank),
		validation.Field(&f.Type, validation.Max(uint64(models.JobTypeInternship)).Error("unknown job type")),
		validation.Field(&f.Skills, validation.Each(notBlank)),
	))
}

func validateHire(s *wallet.Session, f models.HireForm) error {
	if err := requireSession(s); err != nil {
		return err
	}
	return wrapValidation(validation.ValidateStruct(&f,
		validation.Field(&f.JobID, validation.Required),
		validation.Field(&f.ApplicationID, validation.Required),
		validation.Field(&f.Candidate, validation.Required),
		validation.Field(&f.CompanyName, validation.Required, notBlank),
	))
}

func validateID(name, id string) error {
	return wrapValidation(validation.Errors{
		name: validation.Validate(id, validation.Required, notBlank),
	}.Filter())
}
