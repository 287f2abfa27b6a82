package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmspages/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	errBadRequest   = "Bad Request"
	errValidation   = "Validation Error"
	errNotFound     = "Not Found"
	errConflict     = "Conflict"
	errInternal     = "Internal Server Error"
	msgPageNotFound = "CMS page not found"
	msgPageConflict = "A page with this URL key already exists for this store"
	msgInvalidID    = "Invalid page ID"
)

type errorResponse struct {
	Error   string               `json:"error"`
	Message string               `json:"message"`
	Details []service.FieldError `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: kind, Message: message})
}

func respondValidationError(c *gin.Context, verr *service.ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:   errValidation,
		Message: verr.Message,
		Details: verr.Fields,
	})
}

// bindJSON decodes the request body into dst. An empty body decodes as {} so
// that missing required fields are reported by validation instead.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respondValidationError(c, decodeError(err))
	return false
}

func decodeError(err error) *service.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return service.NewValidationError("Invalid request data", service.FieldError{
			Field:   field,
			Message: "must be of type " + jsonTypeName(typeErr.Type.Kind().String()),
		})
	}
	return service.NewValidationError("Invalid request data", service.FieldError{
		Field:   "body",
		Message: "must be a valid JSON object",
	})
}

func jsonTypeName(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"), strings.HasPrefix(kind, "float"):
		return "number"
	case kind == "bool":
		return "boolean"
	case kind == "struct", kind == "map":
		return "object"
	default:
		return kind
	}
}

func parsePageID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, errBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

// parsePageQuery reads listing parameters. Absent values take defaults,
// present values are validated as given.
func parsePageQuery(c *gin.Context) (service.PageQuery, *service.ValidationError) {
	query := service.PageQuery{Page: service.DefaultPage, PerPage: service.DefaultPerPage}
	var fields []service.FieldError

	if raw, ok := c.GetQuery("page"); ok {
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			fields = append(fields, service.FieldError{Field: "page", Message: "must be an integer"})
		} else {
			query.Page = value
		}
	}
	if raw, ok := c.GetQuery("perPage"); ok {
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			fields = append(fields, service.FieldError{Field: "perPage", Message: "must be an integer"})
		} else {
			query.PerPage = value
		}
	}
	if raw, ok := c.GetQuery("storeId"); ok && strings.TrimSpace(raw) != "" {
		value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			fields = append(fields, service.FieldError{Field: "storeId", Message: "must be an integer"})
		} else {
			query.StoreID = &value
		}
	}
	if raw, ok := c.GetQuery("isActive"); ok && strings.TrimSpace(raw) != "" {
		value, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			fields = append(fields, service.FieldError{Field: "isActive", Message: "must be a boolean"})
		} else {
			query.IsActive = &value
		}
	}

	if err := query.Validate(); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			fields = append(fields, verr.Fields...)
		}
	}
	if len(fields) > 0 {
		return query, service.NewValidationError("Invalid query parameters", fields...)
	}
	return query, nil
}
