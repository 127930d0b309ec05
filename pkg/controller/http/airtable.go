package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/airform/pkg/usecase"
)

func airtableMeHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := uc.Airtable.Me(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, me)
	}
}

func listBasesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bases, err := uc.Airtable.Bases(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"bases": bases})
	}
}

func createBaseHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input usecase.CreateBaseInput
		if err := decodeJSON(r, &input); err != nil {
			handleError(w, r, err)
			return
		}

		base, err := uc.Airtable.CreateBase(r.Context(), input)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, base)
	}
}

func listTablesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables, err := uc.Airtable.Tables(r.Context(), chi.URLParam(r, "baseID"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"tables": tables})
	}
}

func listFieldsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := uc.Airtable.Fields(r.Context(), chi.URLParam(r, "baseID"), chi.URLParam(r, "tableID"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"fields": fields})
	}
}
