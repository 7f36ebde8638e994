package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads the body into dst and runs struct validation. It writes the
// error response itself and reports whether the caller may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			RespondAppError(w, ErrInvalidRequest, nil)
			return false
		}
		RespondValidationError(w, toFieldErrors(verrs))
		return false
	}
	return true
}

func toFieldErrors(verrs validator.ValidationErrors) []FieldError {
	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		fields[i] = FieldError{Field: fe.Field(), Message: msg}
	}
	return fields
}

func pathID(r *http.Request, name string) (int64, *AppError) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrResourceNotFound
	}
	return id, nil
}

func pageParams(r *http.Request) (limit, offset int, appErr *AppError) {
	limit, offset = defaultPageLimit, 0
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, ErrInvalidRequest
		}
		limit = min(n, maxPageLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, ErrInvalidRequest
		}
		offset = n
	}
	return limit, offset, nil
}
