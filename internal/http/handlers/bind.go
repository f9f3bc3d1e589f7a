package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerJSONNames sync.Once

// useJSONNames makes validator report fields by their json tag, so errors
// read "minimumSkill is required" rather than "MinimumSkill".
func useJSONNames() {
	registerJSONNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return sf.Name
			}
			return name
		})
	})
}

// BindJSON decodes and validates the body into out. On failure it records a
// validation error whose message lists every offending field, e.g.
// "name is required, email must be a valid email address".
func BindJSON(ctx *gin.Context, out any) bool {
	useJSONNames()

	if err := ctx.ShouldBindJSON(out); err != nil {
		fail(ctx, apperr.Wrap(apperr.KindValidation, bindErrorMessage(err), err))
		return false
	}

	return true
}

func bindErrorMessage(err error) string {
	var (
		invalid  validator.ValidationErrors
		typeErr  *json.UnmarshalTypeError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &invalid):
		parts := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			parts = append(parts, fieldPath(fe)+" "+validationMessage(fe.Tag(), fe.Param()))
		}
		return strings.Join(parts, ", ")

	case errors.As(err, &typeErr) && typeErr.Field != "":
		// Field is already the dotted json path
		return typeErr.Field + " must be of type " + typeErr.Type.String()

	case errors.As(err, &tooLarge):
		return "Request body too large"

	case errors.Is(err, io.EOF):
		return "Request body is required"
	}

	return "Invalid request body"
}

// fieldPath drops the request struct name from the namespace:
// "CreateRequest.careers[1]" -> "careers[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL with HTTP or HTTPS"
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.Join(oneOfValues(param), ", ")
	}

	if param != "" {
		return "failed " + rule + " validation (" + param + ")"
	}
	return "failed " + rule + " validation"
}

// oneOfValues splits a oneof parameter, honouring single-quoted values such as
// 'Web Development'.
func oneOfValues(param string) []string {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
	)

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for _, r := range param {
		switch {
		case r == '\'':
			quoted = !quoted
			if !quoted {
				flush()
			}
		case r == ' ' && !quoted:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	return out
}
