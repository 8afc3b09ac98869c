package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"taskmgmt/internal/auth"
	"taskmgmt/internal/policy"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the tag rules of v and renders each failure as a
// field-level message. It never returns nil.
func validateStruct(v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return []string{}
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// RegisterInput is the payload of account registration.
type RegisterInput struct {
	FullName string `json:"fullName" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required"`
}

// Validate reports every shape problem of the registration payload.
func (in RegisterInput) Validate() []string {
	errs := validateStruct(in)
	if len(in.Password) > auth.MaxPasswordBytes {
		errs = append(errs, fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}
	return errs
}

// LoginInput is the payload of a login attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (in LoginInput) Validate() []string {
	return validateStruct(in)
}

// Date is a due date in a request body. It accepts an RFC 3339 timestamp,
// a timestamp without zone (taken as UTC) or a plain date (midnight UTC).
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q: use YYYY-MM-DD or an RFC 3339 timestamp", raw)
}

// Ptr returns the time, or nil for an absent date.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// CreateTaskInput is the payload for a new task.
type CreateTaskInput struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank"`
	AssignedTo  int64  `json:"assignedTo" validate:"required,gt=0"`
	DueDate     *Date  `json:"dueDate"`
}

func (in CreateTaskInput) Validate() []string {
	return validateStruct(in)
}

// UpdateTaskInput replaces every mutable field of a task.
type UpdateTaskInput struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank"`
	AssignedTo  int64  `json:"assignedTo" validate:"required,gt=0"`
	DueDate     *Date  `json:"dueDate"`
	Status      string `json:"status" validate:"required"`
}

func (in UpdateTaskInput) Validate() []string {
	return validateStruct(in)
}

// StatusInput carries a status transition. The value itself is checked
// against the known statuses by the use case, not here.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

func (in StatusInput) Validate() []string {
	return validateStruct(in)
}

// CreateUpdateInput is a progress note posted by the assignee.
type CreateUpdateInput struct {
	Text          string  `json:"update_text" validate:"notblank"`
	AttachmentURL *string `json:"attachmentURL" validate:"omitempty,max=500"`
}

func (in CreateUpdateInput) Validate() []string {
	return validateStruct(in)
}

// ReviewInput is the rating and comment of a review, used for create and update.
type ReviewInput struct {
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

func (in ReviewInput) Validate() []string {
	errs := []string{}
	if !policy.RatingInRange(in.Rating) {
		errs = append(errs, "rating must be between 1 and 5")
	}
	return errs
}
