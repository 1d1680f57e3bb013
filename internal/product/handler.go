package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/pingliu/service-rental-go/internal/upload"
	"github.com/pingliu/service-rental-go/pkg/utilities"
)

// Handler exposes the catalog endpoints. Catalog responses use the "data"
// envelope field.
type Handler struct {
	svc     *Service
	uploads *upload.Storage
	logger  *zap.SugaredLogger
}

func NewHandler(svc *Service, uploads *upload.Storage, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, uploads: uploads, logger: logger}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		utilities.WriteError(w, http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrProductIDTaken), errors.Is(err, ErrMissingField):
		utilities.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Errorw(op+" failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "server error, "+op+" failed")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// ListActive returns only active products, for storefront display.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), true)
	if err != nil {
		h.writeDomainError(w, "product listing", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, "success", items)
}

// ListAll returns every product including disabled ones, for back office.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), false)
	if err != nil {
		h.writeDomainError(w, "product listing", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, "success", items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "product lookup", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, "success", p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid product payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, "product creation", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, "success", p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid product payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	p, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.writeDomainError(w, "product update", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, "success", p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, "product deletion", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, "product deleted", nil)
}

// UploadImage stores a carousel image and attaches it to the product.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	// check existence first so a bad id does not leave an orphan file
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		h.writeDomainError(w, "product lookup", err)
		return
	}
	url, err := h.uploads.SaveImage(r, "image", "products", "product")
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrNoFile):
			utilities.WriteError(w, http.StatusBadRequest, "no file uploaded")
		case errors.Is(err, upload.ErrTooLarge):
			utilities.WriteError(w, http.StatusBadRequest, "file exceeds the 5MB limit")
		case errors.Is(err, upload.ErrBadType):
			utilities.WriteError(w, http.StatusBadRequest, "only JPG, PNG and GIF images are allowed")
		default:
			h.logger.Errorw("product image upload failed", "err", err)
			utilities.WriteError(w, http.StatusInternalServerError, "server error, image upload failed")
		}
		return
	}
	if err := h.svc.SetImage(r.Context(), id, url); err != nil {
		h.writeDomainError(w, "product image update", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, "image uploaded", map[string]string{"imageUrl": url})
}
