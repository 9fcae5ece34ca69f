package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/adaptive-quiz/backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// Issue describes one violated constraint of a request body.
type Issue struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// ValidationIssues is returned when a request body fails validation. It
// lists every violated field, not just the first.
type ValidationIssues struct {
	Issues []Issue
}

func (e *ValidationIssues) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = strings.Join(is.Path, ".") + ": " + is.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeGenerateRequest reads and validates a question generation request.
// An empty body is treated as an empty object so that every missing field is
// reported. Optional fields may be omitted but not sent as null.
func DecodeGenerateRequest(body io.Reader) (models.GenerateQuestionsRequest, error) {
	var req models.GenerateQuestionsRequest

	data, err := io.ReadAll(body)
	if err != nil {
		return req, &ValidationIssues{Issues: []Issue{{
			Code:    "invalid_json",
			Path:    []string{},
			Message: "request body could not be read",
		}}}
	}

	var issues []Issue
	skip := map[string]bool{}

	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return req, &ValidationIssues{Issues: []Issue{{
				Code:    "invalid_json",
				Path:    []string{},
				Message: "request body must be a JSON object",
			}}}
		}
		skip[typeErr.Field] = true
		issues = append(issues, Issue{
			Code:    "invalid_type",
			Path:    splitPath(typeErr.Field),
			Message: fmt.Sprintf("expected %s, received %s", typeErr.Type.Kind(), typeErr.Value),
		})
	}

	for _, is := range nullIssues(data) {
		field := strings.Join(is.Path, ".")
		if skip[field] {
			continue
		}
		skip[field] = true
		issues = append(issues, is)
	}

	issues = append(issues, validateStruct(req, skip)...)
	if len(issues) > 0 {
		return req, &ValidationIssues{Issues: issues}
	}
	return req, nil
}

// nullableFields lists the request fields in report order with the JSON type
// each one expects.
var nullableFields = []struct {
	path, want string
}{
	{"subject", "string"},
	{"topic", "string"},
	{"difficulty", "string"},
	{"numQuestions", "number"},
	{"profile", "object"},
	{"profile.lastAccuracy", "number"},
	{"profile.avgTimeSecs", "number"},
}

// nullIssues reports fields sent as an explicit JSON null. The struct decode
// cannot tell null from absent for pointer fields.
func nullIssues(data []byte) []Issue {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil
	}
	var profile map[string]json.RawMessage
	if raw, ok := top["profile"]; ok {
		_ = json.Unmarshal(raw, &profile)
	}

	var issues []Issue
	for _, f := range nullableFields {
		obj, key := top, f.path
		if rest, ok := strings.CutPrefix(f.path, "profile."); ok {
			obj, key = profile, rest
		}
		raw, ok := obj[key]
		if !ok || string(bytes.TrimSpace(raw)) != "null" {
			continue
		}
		issues = append(issues, Issue{
			Code:    "invalid_type",
			Path:    splitPath(f.path),
			Message: fmt.Sprintf("expected %s, received null", f.want),
		})
	}
	return issues
}

func validateStruct(req models.GenerateQuestionsRequest, skip map[string]bool) []Issue {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Code: "custom", Path: []string{}, Message: err.Error()}}
	}

	var issues []Issue
	for _, fe := range fieldErrs {
		path := splitPath(fe.Namespace())
		if len(path) > 1 {
			path = path[1:]
		}
		if skip[strings.Join(path, ".")] {
			continue
		}
		issues = append(issues, issueFor(fe, path))
	}
	return issues
}

func issueFor(fe validator.FieldError, path []string) Issue {
	field := strings.Join(path, ".")
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return Issue{Code: "invalid_type", Path: path, Message: field + " is required"}
	case "min", "gte":
		if isString {
			return Issue{Code: "too_small", Path: path, Message: fmt.Sprintf("%s must contain at least %s character(s)", field, fe.Param())}
		}
		return Issue{Code: "too_small", Path: path, Message: fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())}
	case "max", "lte":
		return Issue{Code: "too_big", Path: path, Message: fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())}
	case "oneof":
		return Issue{Code: "invalid_enum_value", Path: path, Message: fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))}
	}
	return Issue{Code: "custom", Path: path, Message: fmt.Sprintf("%s failed %s validation", field, fe.Tag())}
}

func splitPath(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ".")
}
