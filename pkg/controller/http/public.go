package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/usecase"
	"github.com/secmon-lab/airform/pkg/utils/safe"
)

func getPublicFormHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := uc.Form.GetPublicForm(r.Context(), formIDParam(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, form)
	}
}

type submitRequest struct {
	Answers model.Answers `json:"answers"`
}

func submitHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.Submission.Submit(r.Context(), formIDParam(r), req.Answers)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, result)
	}
}

// uploadAttachmentHandler accepts one multipart "file" part
func uploadAttachmentHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !uc.Attachment.Enabled() {
			handleError(w, r, &usecase.Error{Kind: usecase.ErrStorageDisabled, Message: "Attachment upload is not enabled"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, usecase.MaxAttachmentSize+1<<20)
		file, header, err := r.FormFile("file")
		if err != nil {
			msg := "file is required"
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				msg = "file is too large"
			}
			handleError(w, r, &usecase.Error{Kind: usecase.ErrValidation, Message: msg, Cause: err})
			return
		}
		defer safe.Close(r.Context(), file)

		body, err := io.ReadAll(io.LimitReader(file, usecase.MaxAttachmentSize+1))
		if err != nil {
			handleError(w, r, &usecase.Error{Kind: usecase.ErrValidation, Message: "failed to read file", Cause: err})
			return
		}

		att, err := uc.Attachment.Upload(r.Context(), formIDParam(r), header.Filename, header.Header.Get("Content-Type"), body)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, att)
	}
}
