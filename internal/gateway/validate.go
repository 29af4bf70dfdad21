package gateway

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
)

type UserCreate struct {
	Name  string `json:"name" validate:"notblank,min=2,max=30"`
	Email string `json:"email" validate:"required,email"`
}

type UserUpdate struct {
	Name  *string `json:"name" validate:"omitnil,notblank,min=2,max=30"`
	Email *string `json:"email" validate:"omitnil,email"`
}

type ItemCreate struct {
	Name        string `json:"name" validate:"notblank,min=2,max=30"`
	Description string `json:"description" validate:"notblank,min=2,max=200"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitnil,gt=0"`
}

type ItemUpdate struct {
	Name        *string `json:"name" validate:"omitnil,notblank,min=2,max=30"`
	Description *string `json:"description" validate:"omitnil,notblank,min=2,max=200"`
	Available   *bool   `json:"available"`
}

type CommentCreate struct {
	Text string `json:"text" validate:"notblank,max=1000"`
}

type RequestCreate struct {
	Description string `json:"description" validate:"notblank,min=2,max=200"`
}

type BookingCreate struct {
	ItemID *int64     `json:"itemId" validate:"required,gt=0"`
	Start  *time.Time `json:"start" validate:"required"`
	End    *time.Time `json:"end" validate:"required"`
}

// checkAt runs the rules that depend on the current time.
func (b *BookingCreate) checkAt(now time.Time) error {
	return models.ValidInterval(*b.Start, *b.End, now)
}

type timeChecked interface {
	checkAt(now time.Time) error
}

// ValidationError is reported to the caller as 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validator checks request DTOs.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Validator{v: v, now: now}
}

func (val *Validator) Validate(dto any) error {
	if err := val.v.Struct(dto); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ValidationError{Msg: describe(fieldErrs[0])}
		}
		return &ValidationError{Msg: err.Error()}
	}
	if tc, ok := dto.(timeChecked); ok {
		if err := tc.checkAt(val.now()); err != nil {
			return &ValidationError{Msg: err.Error()}
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s must not be blank", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
