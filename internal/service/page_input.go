package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/cmspages/internal/db"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultLayout  = "1column"
	DefaultPage    = 1
	DefaultPerPage = 15
	MaxPerPage     = 100
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误明细中使用 JSON 字段名，便于客户端定位
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	return v
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when request data does not satisfy the page
// schema. Fields lists every offending field.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// NewValidationError builds a ValidationError from field errors.
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// OptionalString distinguishes an absent JSON field from an explicit null.
type OptionalString struct {
	Value string
	Set   bool
	Null  bool
}

// UnmarshalJSON only runs when the field is present in the payload.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		o.Value = ""
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns the value as a nullable column value.
func (o OptionalString) Ptr() *string {
	if !o.Set || o.Null {
		return nil
	}
	value := o.Value
	return &value
}

// CreatePageInput 创建页面时允许提交的字段。
type CreatePageInput struct {
	StoreID  *int64  `json:"storeId" validate:"required,gte=0"`
	Title    string  `json:"title" validate:"required,max=255"`
	Layout   *string `json:"layout" validate:"omitempty,max=255"`
	URLKey   string  `json:"urlKey" validate:"required,max=255"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"isActive"`
}

func (in *CreatePageInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.URLKey = strings.TrimSpace(in.URLKey)
	if in.Layout != nil {
		trimmed := strings.TrimSpace(*in.Layout)
		in.Layout = &trimmed
	}
}

// Validate checks the create payload against the page schema.
func (in CreatePageInput) Validate() error {
	in.normalize()
	return fromValidator("Invalid request data", validate.Struct(in))
}

func (in CreatePageInput) toModel() db.CmsPage {
	page := db.CmsPage{
		Title:    in.Title,
		Layout:   DefaultLayout,
		URLKey:   in.URLKey,
		Content:  in.Content,
		IsActive: true,
	}
	if in.StoreID != nil {
		page.StoreID = *in.StoreID
	}
	if in.Layout != nil && *in.Layout != "" {
		page.Layout = *in.Layout
	}
	if in.IsActive != nil {
		page.IsActive = *in.IsActive
	}
	return page
}

// UpdatePageInput 部分更新，未出现的字段保持不变；content 显式为 null 时清空内容。
type UpdatePageInput struct {
	StoreID  *int64         `json:"storeId" validate:"omitempty,gte=0"`
	Title    *string        `json:"title" validate:"omitempty,min=1,max=255"`
	Layout   *string        `json:"layout" validate:"omitempty,max=255"`
	URLKey   *string        `json:"urlKey" validate:"omitempty,min=1,max=255"`
	Content  OptionalString `json:"content" validate:"-"`
	IsActive *bool          `json:"isActive"`
}

func (in *UpdatePageInput) normalize() {
	for _, field := range []**string{&in.Title, &in.Layout, &in.URLKey} {
		if *field != nil {
			trimmed := strings.TrimSpace(**field)
			*field = &trimmed
		}
	}
}

// Validate checks the partial update payload.
func (in UpdatePageInput) Validate() error {
	in.normalize()
	return fromValidator("Invalid request data", validate.Struct(in))
}

func (in UpdatePageInput) apply(page *db.CmsPage) {
	if in.StoreID != nil {
		page.StoreID = *in.StoreID
	}
	if in.Title != nil {
		page.Title = *in.Title
	}
	if in.Layout != nil {
		page.Layout = *in.Layout
		if page.Layout == "" {
			page.Layout = DefaultLayout
		}
	}
	if in.URLKey != nil {
		page.URLKey = *in.URLKey
	}
	if in.Content.Set {
		page.Content = in.Content.Ptr()
	}
	if in.IsActive != nil {
		page.IsActive = *in.IsActive
	}
}

// PageQuery holds listing parameters. Zero Page/PerPage fall back to defaults.
type PageQuery struct {
	Page     int    `query:"page" validate:"gte=1"`
	PerPage  int    `query:"perPage" validate:"gte=1,lte=100"`
	StoreID  *int64 `query:"storeId"`
	IsActive *bool  `query:"isActive"`
}

func (q PageQuery) withDefaults() PageQuery {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.PerPage == 0 {
		q.PerPage = DefaultPerPage
	}
	return q
}

// Validate checks paging bounds on the values as given. Callers that want
// defaults apply them first; the HTTP layer only defaults absent parameters,
// so page=0 in a request is rejected there.
func (q PageQuery) Validate() error {
	return fromValidator("Invalid query parameters", validate.Struct(q))
}

// Offset returns the number of rows skipped before the requested page.
// ok is false when the offset does not fit in an int.
func (q PageQuery) Offset() (offset int, ok bool) {
	q = q.withDefaults()
	if q.Page < 1 || q.PerPage < 1 {
		return 0, true
	}
	if q.Page-1 > math.MaxInt/q.PerPage {
		return 0, false
	}
	return (q.Page - 1) * q.PerPage, true
}

func fromValidator(message string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: describeFieldError(fe)})
	}
	return NewValidationError(message, fields...)
}

func describeFieldError(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		if isString {
			if fe.Param() == "1" {
				return "must not be empty"
			}
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
