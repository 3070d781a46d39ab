// Package httpresp centraliza el envelope JSON de la API.
// Antes cada módulo tenía su propio writeJSON; con tres módulos ya convenía extraerlo.
package httpresp

import (
	"encoding/json"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"pet-adoption/internal/platform/apierr"
	"pet-adoption/internal/platform/logger"
)

const maxLimit = 100

type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type ErrorEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []apierr.FieldError `json:"errors,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
	Count int `json:"count"`
}

// Page son los parámetros page/limit ya normalizados.
type Page struct {
	Number int
	Limit  int
}

// Skip satura en math.MaxInt: una página enorme da una página vacía, no un
// offset negativo.
func (p Page) Skip() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}

// ParsePage lee ?page=&limit= con defaults tolerantes (valores inválidos => default).
func ParsePage(r *http.Request, defaultLimit int) Page {
	q := r.URL.Query()

	page, err := strconv.Atoi(strings.TrimSpace(q.Get("page")))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: page, Limit: limit}
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Success(w http.ResponseWriter, status int, msg string, data any) {
	JSON(w, status, Envelope{Success: true, Message: msg, Data: data})
}

func Created(w http.ResponseWriter, msg string, data any) {
	Success(w, http.StatusCreated, msg, data)
}

// Paginated arma el bloque pagination; count es el largo de data.
func Paginated(w http.ResponseWriter, msg string, data any, page Page, total int) {
	pages := 0
	if page.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(page.Limit)))
	}
	JSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: msg,
		Data:    data,
		Pagination: &Pagination{
			Page:  page.Number,
			Limit: page.Limit,
			Total: total,
			Pages: pages,
			Count: lenOf(data),
		},
	})
}

// Fail escribe un error sin pasar por apierr (p.ej. desde middlewares).
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorEnvelope{Success: false, Message: msg})
}

// Error traduce err a status + envelope. Los errores internos se loguean y
// no se filtran al cliente.
func Error(w http.ResponseWriter, log logger.Logger, err error) {
	e, ok := apierr.As(err)
	if !ok || e.Kind == apierr.KindInternal {
		if log != nil {
			log.Error("request failed", map[string]any{"err": err})
		}
		Fail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	JSON(w, e.Kind.HTTPStatus(), ErrorEnvelope{
		Success: false,
		Message: e.Message,
		Errors:  e.Fields,
	})
}

func lenOf(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	default:
		return 1
	}
}
