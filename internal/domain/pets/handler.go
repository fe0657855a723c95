package pets

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"petverse/internal/middleware"
	"petverse/internal/platform/respond"
)

const maxUploadBytes = 10 << 20

// RegisterRoutes monta /pets. El router debe envolverlo con middleware.RequireAuth.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc))
		pr.Post("/", createPetHandler(svc))

		// ruta estática: chi la resuelve antes que /{petID}
		pr.Post("/upload-image", uploadImageHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Put("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})
}

// petRequest es el cuerpo de alta de mascota.
type petRequest struct {
	Name      string   `json:"name"`
	Species   string   `json:"species"`
	Breed     *string  `json:"breed"`
	Sex       *string  `json:"sex"`
	Birthdate *string  `json:"birthdate"` // YYYY-MM-DD
	Weight    *float64 `json:"weight"`
	AvatarURL *string  `json:"avatar_url"`
}

// updatePetRequest es parcial: campo ausente o null = no tocar.
type updatePetRequest struct {
	Name      *string  `json:"name"`
	Species   *string  `json:"species"`
	Breed     *string  `json:"breed"`
	Sex       *string  `json:"sex"`
	Birthdate *string  `json:"birthdate"`
	Weight    *float64 `json:"weight"`
	AvatarURL *string  `json:"avatar_url"`
}

// PetResponse es la forma de una mascota en la API (también se usa en /users/me).
type PetResponse struct {
	ID        int64    `json:"id"`
	OwnerID   int64    `json:"owner_id"`
	Name      string   `json:"name"`
	Species   string   `json:"species"`
	Breed     *string  `json:"breed"`
	Sex       *string  `json:"sex"`
	Birthdate *string  `json:"birthdate"`
	Weight    *float64 `json:"weight"`
	AvatarURL *string  `json:"avatar_url"`
}

type uploadImageResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// listPetsHandler godoc
// @Summary Listar mis mascotas
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PetResponse
// @Failure 401 {object} respond.DetailBody
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())

		items, err := svc.ListByOwner(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description El backend asigna el id. name y species son obligatorios.
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body petRequest true "Datos de la mascota; birthdate en formato YYYY-MM-DD"
// @Success 201 {object} PetResponse
// @Failure 400 {object} respond.DetailBody
// @Failure 401 {object} respond.DetailBody
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())

		var req petRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Create(r.Context(), uid, CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			Birthdate: req.Birthdate,
			Weight:    req.Weight,
			AvatarURL: req.AvatarURL,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, ToResponse(p))
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Success 200 {object} PetResponse
// @Failure 404 {object} respond.DetailBody
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		petID, ok := pathID(w, r)
		if !ok {
			return
		}

		p, err := svc.Get(r.Context(), uid, petID)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, ToResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Actualización parcial: los campos ausentes o null no se tocan.
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} PetResponse
// @Failure 400 {object} respond.DetailBody
// @Failure 404 {object} respond.DetailBody
// @Router /pets/{petID} [put]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		petID, ok := pathID(w, r)
		if !ok {
			return
		}

		var req updatePetRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Update(r.Context(), uid, petID, UpdateInput(req))
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, ToResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Tags pets
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Success 204
// @Failure 404 {object} respond.DetailBody
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		petID, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), uid, petID); err != nil {
			writeError(w, err)
			return
		}
		respond.NoContent(w)
	}
}

// uploadImageHandler godoc
// @Summary Subir imagen de perfil de la mascota
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param pet_id query int true "ID de la mascota"
// @Param file formData file true "Imagen"
// @Success 200 {object} uploadImageResponse
// @Failure 400 {object} respond.DetailBody
// @Failure 404 {object} respond.DetailBody
// @Router /pets/upload-image [post]
func uploadImageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())

		petID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("pet_id")), 10, 64)
		if err != nil || petID <= 0 {
			respond.Detail(w, http.StatusBadRequest, "pet_id query parameter is required")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			respond.Detail(w, http.StatusBadRequest, "multipart field 'file' is required")
			return
		}
		defer file.Close()

		url, err := svc.UploadImage(r.Context(), uid, petID, header.Filename, file)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, uploadImageResponse{AvatarURL: url})
	}
}

func ToResponse(p Pet) PetResponse {
	var bd *string
	if p.Birthdate != nil {
		s := p.Birthdate.Format(BirthdateLayout)
		bd = &s
	}
	return PetResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Species:   p.Species,
		Breed:     p.Breed,
		Sex:       p.Sex,
		Birthdate: bd,
		Weight:    p.Weight,
		AvatarURL: p.AvatarURL,
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "petID"), 10, 64)
	if err != nil || id <= 0 {
		respond.Detail(w, http.StatusNotFound, "Pet not found")
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Detail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Detail(w, http.StatusNotFound, "Pet not found")
	case errors.Is(err, ErrNoImageStore):
		respond.Detail(w, http.StatusNotImplemented, err.Error())
	default:
		respond.Detail(w, http.StatusInternalServerError, "internal error")
	}
}
