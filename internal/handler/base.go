package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/repository"
)

// base содержит общие для всех обработчиков помощники
type base struct {
	validator *validator.Validate
	logger    *slog.Logger
}

func newBase(logger *slog.Logger) base {
	return base{
		validator: newValidator(),
		logger:    logger,
	}
}

// newValidator добавляет к стандартным правилам notblank и singleline
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsControl)
	})
	return v
}

// decode читает JSON тело и проверяет его теги validate
func (h *base) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return h.validate(w, dst)
}

func (h *base) validate(w http.ResponseWriter, v any) bool {
	if err := h.validator.Struct(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return false
	}
	return true
}

func (h *base) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid "+name, r.PathValue(name))
		return 0, false
	}
	return id, true
}

// query разбирает параметры строки запроса; первая ошибка запоминается
type query struct {
	r   *http.Request
	err error
}

func (q *query) str(name string) string {
	return q.r.URL.Query().Get(name)
}

func (q *query) int64Ptr(name string) *int64 {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &v
}

func (q *query) boolPtr(name string) *bool {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &v
}

func (q *query) date(name string) *time.Time {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	v, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &v
}

// page возвращает номер и размер страницы; размер ограничен limit
func (q *query) page(defaultSize, limit int) repository.Page {
	p := repository.Page{Number: 1, Size: defaultSize}
	if raw := q.str("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			q.fail("page", raw)
		} else {
			p.Number = n
		}
	}
	if raw := q.str("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			q.fail("page_size", raw)
		} else {
			p.Size = min(n, limit)
		}
	}
	return p
}

func (q *query) fail(name, value string) {
	if q.err == nil {
		q.err = fmt.Errorf("invalid %s: %q", name, value)
	}
}

func (h *base) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrForbidden):
		h.respondError(w, http.StatusForbidden, err.Error(), "")
	case errors.Is(err, domain.ErrConflict):
		h.respondError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, domain.ErrReferential):
		h.respondError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, domain.ErrValidation):
		h.respondError(w, http.StatusBadRequest, err.Error(), "")
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h *base) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *base) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}

func listResponse[T any](items []T, total int64, page repository.Page) dto.ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return dto.ListResponse[T]{Items: items, Total: total, Page: page.Number, PageSize: page.Size}
}
