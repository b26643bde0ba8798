package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/apperror"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	// Now is the clock used by the notfuture rule.
	Now = time.Now

	registerOnce sync.Once
)

// ScoreMessage is the error returned for an out of range review score.
var ScoreMessage = fmt.Sprintf("score must be between %d and %d", entity.MinScore, entity.MaxScore)

// Register installs the custom rules into gin's binding validator.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidUsername(fl.Field().String()) == ""
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRegex.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
			return ValidYear(int(fl.Field().Int())) == ""
		})
		_ = v.RegisterValidation("score", func(fl validator.FieldLevel) bool {
			return ValidScore(int(fl.Field().Int())) == ""
		})
	})
}

// ValidUsername returns an empty string for an acceptable username or the
// reason it is rejected.
func ValidUsername(username string) string {
	if username == entity.ForbiddenUsername {
		return fmt.Sprintf("username %q is not allowed", entity.ForbiddenUsername)
	}
	if !usernameRegex.MatchString(username) {
		return "username may contain only letters, digits and @/./+/-/_ characters"
	}
	return ""
}

// ValidYear rejects years after the current calendar year.
func ValidYear(year int) string {
	current := Now().Year()
	if year > current {
		return fmt.Sprintf("year cannot be greater than %d", current)
	}
	return ""
}

func ValidScore(score int) string {
	if score < entity.MinScore || score > entity.MaxScore {
		return ScoreMessage
	}
	return ""
}

func ValidSlug(slug string) bool {
	return slugRegex.MatchString(slug)
}

// FormatValidationError converts binding failures into a field scoped
// apperror.ValidationError. Other errors pass through as 400s.
func FormatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		out := &apperror.ValidationError{Kind: apperror.ErrInvalidInput}
		for _, fe := range validationErrors {
			out.Add(fe.Field(), getFieldErrorMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperror.Invalid(typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type.String()))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperror.New(http.StatusBadRequest, "malformed JSON body", apperror.ErrBadRequest)
	}

	return apperror.New(http.StatusBadRequest, err.Error(), apperror.ErrBadRequest)
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return "this list may not be empty"
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "username":
		if username, ok := fe.Value().(*string); ok && username != nil {
			return ValidUsername(*username)
		}
		return ValidUsername(fmt.Sprint(fe.Value()))
	case "slug":
		return "enter a valid slug consisting of letters, numbers, underscores or hyphens"
	case "notfuture":
		switch year := fe.Value().(type) {
		case int:
			return ValidYear(year)
		case *int:
			if year != nil {
				return ValidYear(*year)
			}
		}
		return ValidYear(Now().Year() + 1)
	case "score":
		return ScoreMessage
	default:
		return fmt.Sprintf("%s is not valid", field)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
