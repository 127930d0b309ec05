package usecase

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/types"
)

// MaxAttachmentSize is the largest file accepted by Upload
const MaxAttachmentSize = 10 << 20

// AttachmentUseCase stores files for attachment questions of public forms
type AttachmentUseCase struct {
	uc *UseCases
}

// Attachment is the answer value of one uploaded file
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Enabled reports whether a storage bucket is configured
func (x *AttachmentUseCase) Enabled() bool {
	return x.uc.storage != nil
}

// Upload stores body under forms/<formID>/<random>/<filename> and returns
// the URL Airtable fetches the file from
func (x *AttachmentUseCase) Upload(ctx context.Context, formID model.FormID, filename, contentType string, body []byte) (*Attachment, error) {
	if !x.Enabled() {
		return nil, newError(ErrStorageDisabled, "Attachment upload is not enabled", nil)
	}

	form, err := x.uc.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !hasAttachmentQuestion(form) {
		return nil, newError(ErrValidation, "Form has no attachment question", nil)
	}

	name := sanitizeFilename(filename)
	if name == "" {
		return nil, newError(ErrValidation, "filename is required", nil)
	}
	if len(body) == 0 {
		return nil, newError(ErrValidation, "file is empty", nil)
	}
	if len(body) > MaxAttachmentSize {
		return nil, newError(ErrValidation, "file is too large", nil)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectPath := path.Join("forms", form.ID.String(), uuid.NewString(), name)
	url, err := x.uc.storage.Put(ctx, objectPath, contentType, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store attachment",
			goerr.V(FormIDKey, form.ID), goerr.V("path", objectPath))
	}

	return &Attachment{URL: url, Filename: name}, nil
}

func hasAttachmentQuestion(form *model.Form) bool {
	for _, q := range form.Questions {
		if q.Type == types.QuestionTypeAttachment {
			return true
		}
	}
	return false
}

// sanitizeFilename drops directory parts and characters that break object
// paths
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
}
