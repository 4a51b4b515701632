package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/middleware"
	"github.com/onboarding-api/internal/repository"
	"github.com/onboarding-api/internal/service"
)

const (
	documentsPageSize    = 30
	documentsMaxPageSize = 100
	multipartMemory      = 8 << 20
)

type DocumentHandler struct {
	base
	docService     service.DocumentService
	maxUploadBytes int64
}

func NewDocumentHandler(docService service.DocumentService, maxUploadBytes int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		base:           newBase(logger),
		docService:     docService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload принимает multipart форму с полями file, type, name и mandatory
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "file too large", err.Error())
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "file is required", err.Error())
		return
	}
	defer file.Close()

	req := dto.UploadDocumentRequest{
		Type: r.FormValue("type"),
		Name: strings.TrimSpace(r.FormValue("name")),
	}
	if req.Name == "" {
		req.Name = header.Filename
	}
	if raw := r.FormValue("mandatory"); raw != "" {
		mandatory, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "validation error", "mandatory must be a boolean")
			return
		}
		req.Mandatory = mandatory
	}
	if !h.validate(w, &req) {
		return
	}

	doc, err := h.docService.Upload(r.Context(), middleware.ActorFrom(r.Context()), employeeID, &req, header.Filename, file)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	docs, err := h.docService.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, nonNil(docs))
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	filter := repository.DocumentFilter{
		State:      domain.DocumentState(q.str("state")),
		EmployeeID: q.int64Ptr("employee_id"),
	}
	page := q.page(documentsPageSize, documentsMaxPageSize)
	if q.err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid query", q.err.Error())
		return
	}
	if filter.State != "" && !filter.State.Valid() {
		h.respondError(w, http.StatusBadRequest, "invalid query", "unknown state")
		return
	}

	docs, total, err := h.docService.List(r.Context(), filter, page)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, listResponse(docs, total, page))
}

// Download отдаёт содержимое загруженного файла
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	doc, content, err := h.docService.Open(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	defer content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(doc.FileRef))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": doc.Name + filepath.Ext(doc.FileRef),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		h.logger.Error("failed to stream document", slog.Int64("document_id", id), slog.Any("error", err))
	}
}

func (h *DocumentHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ReviewDocumentRequest
	if !h.decode(w, r, &req) {
		return
	}

	doc, err := h.docService.Review(r.Context(), middleware.ActorFrom(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) BulkReview(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.docService.BulkReview(r.Context(), middleware.ActorFrom(r.Context()), req.IDs, domain.DocumentState(req.State))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.BulkResponse{Updated: updated})
}
