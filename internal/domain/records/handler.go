package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"petverse/internal/middleware"
	"petverse/internal/platform/respond"
)

// RegisterRoutes monta /pets/{petID}/{kind}. Convive con el subrouter de /pets.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/{kind}", func(rr chi.Router) {
		rr.Get("/", listRecordsHandler(svc))
		rr.Post("/", createRecordHandler(svc))
		rr.Put("/{recordID}", updateRecordHandler(svc))
		rr.Delete("/{recordID}", deleteRecordHandler(svc))
	})
}

// listRecordsHandler godoc
// @Summary Listar registros de historial
// @Description kind: health-records, vaccines, medications, weights, media, medical-visits, vaccine-scans.
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Param kind path string true "Tipo de registro"
// @Success 200 {array} object
// @Failure 404 {object} respond.DetailBody
// @Router /pets/{petID}/{kind} [get]
func listRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		petID, kind, ok := scope(w, r)
		if !ok {
			return
		}

		items, err := svc.List(r.Context(), uid, petID, kind)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(items))
		for _, rec := range items {
			out = append(out, ToResponse(rec))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// createRecordHandler godoc
// @Summary Crear registro de historial
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Param kind path string true "Tipo de registro"
// @Param payload body object true "Campos del registro según kind; fechas YYYY-MM-DD"
// @Success 201 {object} object
// @Failure 400 {object} respond.DetailBody
// @Failure 404 {object} respond.DetailBody
// @Router /pets/{petID}/{kind} [post]
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		petID, kind, ok := scope(w, r)
		if !ok {
			return
		}

		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}

		rec, err := svc.Create(r.Context(), uid, petID, kind, fields)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, ToResponse(rec))
	}
}

// updateRecordHandler godoc
// @Summary Actualizar registro de historial
// @Description Solo se modifican los campos enviados.
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Param kind path string true "Tipo de registro"
// @Param recordID path int true "ID del registro"
// @Param payload body object true "Campos a modificar"
// @Success 200 {object} object
// @Failure 404 {object} respond.DetailBody
// @Router /pets/{petID}/{kind}/{recordID} [put]
func updateRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		petID, kind, ok := scope(w, r)
		if !ok {
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
		if err != nil {
			respond.Detail(w, http.StatusNotFound, "Record not found")
			return
		}

		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}

		rec, err := svc.Update(r.Context(), uid, petID, kind, id, fields)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, ToResponse(rec))
	}
}

// deleteRecordHandler godoc
// @Summary Borrar registro de historial
// @Tags records
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Param kind path string true "Tipo de registro"
// @Param recordID path int true "ID del registro"
// @Success 204
// @Failure 404 {object} respond.DetailBody
// @Router /pets/{petID}/{kind}/{recordID} [delete]
func deleteRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		petID, kind, ok := scope(w, r)
		if !ok {
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
		if err != nil {
			respond.Detail(w, http.StatusNotFound, "Record not found")
			return
		}

		if err := svc.Delete(r.Context(), uid, petID, kind, id); err != nil {
			writeError(w, err)
			return
		}
		respond.NoContent(w)
	}
}

// ToResponse aplana el registro: {"id", "pet_id", ...campos}.
func ToResponse(rec Record) map[string]any {
	out := make(map[string]any, len(rec.Fields)+2)
	for k, v := range rec.Fields {
		out[k] = v
	}
	out["id"] = rec.ID
	out["pet_id"] = rec.PetID
	return out
}

func scope(w http.ResponseWriter, r *http.Request) (int64, Kind, bool) {
	petID, err := strconv.ParseInt(chi.URLParam(r, "petID"), 10, 64)
	if err != nil || petID <= 0 {
		respond.Detail(w, http.StatusNotFound, "Pet not found")
		return 0, "", false
	}
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respond.Detail(w, http.StatusNotFound, "Unknown record kind")
		return 0, "", false
	}
	return petID, kind, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Detail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPetNotFound):
		respond.Detail(w, http.StatusNotFound, "Pet not found")
	case errors.Is(err, ErrNotFound):
		respond.Detail(w, http.StatusNotFound, "Record not found")
	default:
		respond.Detail(w, http.StatusInternalServerError, "internal error")
	}
}
