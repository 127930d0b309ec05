package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/usecase"
)

func formIDParam(r *http.Request) model.FormID {
	return model.FormID(chi.URLParam(r, "formID"))
}

func createFormHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input usecase.CreateFormInput
		if err := decodeJSON(r, &input); err != nil {
			handleError(w, r, err)
			return
		}

		form, err := uc.Form.CreateForm(r.Context(), input)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, form)
	}
}

func listFormsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := uc.Form.ListForms(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, forms)
	}
}

func getFormHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := uc.Form.GetForm(r.Context(), formIDParam(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, form)
	}
}

func listResponsesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := uc.Form.ListResponses(r.Context(), formIDParam(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, list)
	}
}
