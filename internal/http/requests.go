package http

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/leoperezgr/Leofy/internal/httperr"
)

// maxBodyBytes bounds request bodies; nothing here needs more than 1 MiB.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names, not Go struct names, in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate parses the JSON body into dst and runs schema
// validation, returning a 400 listing the offending fields on mismatch.
func decodeAndValidate(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		return httperr.BadRequest("unreadable request body")
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return httperr.BadRequest("malformed JSON body")
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := isValidationErrors(err, &fieldErrs); ok {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Field())
			}
			return httperr.Validation(fields...)
		}
		return httperr.BadRequest("invalid request body")
	}
	return nil
}

func isValidationErrors(err error, dst *validator.ValidationErrors) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		*dst = ve
		return true
	}
	return false
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,min=2"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

type onboardingRequest struct {
	Name string `json:"name" validate:"omitempty,min=1"`
}

type createCardRequest struct {
	Name        string       `json:"name" validate:"required"`
	Last4       string       `json:"last4" validate:"omitempty,len=4,numeric"`
	Brand       string       `json:"brand" validate:"omitempty,oneof=VISA MASTERCARD AMEX OTHER"`
	CreditLimit *json.Number `json:"credit_limit"`
	ClosingDay  *int         `json:"closing_day" validate:"omitempty,min=1,max=31"`
	DueDay      *int         `json:"due_day" validate:"omitempty,min=1,max=31"`
}

type createTransactionRequest struct {
	Type        string      `json:"type" validate:"required,oneof=income expense INCOME EXPENSE"`
	Amount      json.Number `json:"amount" validate:"required"`
	Category    string      `json:"category"`
	Description string      `json:"description" validate:"omitempty,max=200"`
	Date        string      `json:"date" validate:"required"`
	CardID      *string     `json:"card_id"`
	CategoryID  *string     `json:"category_id"`
}
