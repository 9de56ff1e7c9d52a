package validation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator to integrate with Gin.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &Validator{v: v}
}

// FieldError describes one failed rule using the JSON field path.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Struct validates payload and returns the failed rules, or nil.
func (v *Validator) Struct(payload any) ([]FieldError, error) {
	err := v.v.Struct(payload)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out, nil
}

// ValidateStruct answers 400 with the failed rules and returns false when
// payload is invalid.
func (v *Validator) ValidateStruct(ctx *gin.Context, payload any) bool {
	fields, err := v.Struct(payload)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if len(fields) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fields})
		return false
	}
	return true
}
