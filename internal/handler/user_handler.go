package handler

import (
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"shop-backend/internal/middleware"
	"shop-backend/internal/model"
	"shop-backend/internal/service"
	"shop-backend/pkg/apierror"
)

type UserHandler struct {
	service       *service.UserService
	maxUploadSize int64
}

func NewUserHandler(service *service.UserService, maxUploadSize int64) *UserHandler {
	return &UserHandler{service: service, maxUploadSize: maxUploadSize}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, users, nil)
}

func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	user, err := h.service.Current(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) CustomerInfo(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	user, err := h.service.CustomerInfo(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

// Update accepts either a JSON patch or a multipart form whose file parts are
// treated as avatar pictures.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, apierror.BadRequest("user id is required", "id"))
		return
	}

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	var (
		req   model.UpdateUserRequest
		files []model.UploadedFile
	)

	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			writeError(w, apierror.BadRequest("invalid multipart form", err.Error()))
			return
		}
		defer r.MultipartForm.RemoveAll()

		var err error
		req, err = requestFromForm(r.MultipartForm.Value)
		if err != nil {
			writeError(w, err)
			return
		}

		opened, closeAll, err := openFormFiles(r.MultipartForm.File)
		defer closeAll()
		if err != nil {
			writeError(w, err)
			return
		}
		files = opened
	} else {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	user, err := h.service.Update(r.Context(), claims, userID, req, files)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.service.Follow(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"following": true}, nil)
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.service.Unfollow(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"following": false}, nil)
}

func requestFromForm(values map[string][]string) (model.UpdateUserRequest, error) {
	field := func(name string) *string {
		v, ok := values[name]
		if !ok || len(v) == 0 {
			return nil
		}
		trimmed := strings.TrimSpace(v[0])
		return &trimmed
	}

	req := model.UpdateUserRequest{
		FirstName:  field("firstName"),
		LastName:   field("lastName"),
		Country:    field("country"),
		City:       field("city"),
		Username:   field("username"),
		Occupation: field("occupation"),
		Hobby:      field("hobby"),
	}

	if raw := field("yearOfBirth"); raw != nil && *raw != "" {
		year, err := strconv.Atoi(*raw)
		if err != nil {
			return model.UpdateUserRequest{}, apierror.BadRequest("yearOfBirth must be a number", "yearOfBirth:number")
		}
		req.YearOfBirth = &year
	}

	return req, nil
}

// openFormFiles opens every uploaded part in field-name order. The returned
// close func is always safe to call.
func openFormFiles(form map[string][]*multipart.FileHeader) ([]model.UploadedFile, func(), error) {
	fields := make([]string, 0, len(form))
	for name := range form {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	var (
		files   []model.UploadedFile
		closers []multipart.File
	)
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	for _, name := range fields {
		for _, header := range form[name] {
			f, err := header.Open()
			if err != nil {
				return nil, closeAll, apierror.BadRequest("cannot read uploaded file", header.Filename)
			}
			closers = append(closers, f)
			files = append(files, model.UploadedFile{Name: header.Filename, Content: f})
		}
	}

	return files, closeAll, nil
}
