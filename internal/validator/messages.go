package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type fieldRule struct {
	field string
	tag   string
}

var messages = map[fieldRule]string{
	{"username", "required"}: "Username is required",
	{"username", "min"}:      "Username must be between 3 and 50 characters",
	{"username", "max"}:      "Username must be between 3 and 50 characters",
	{"username", "username"}: "Username can only contain letters, numbers, underscores, and hyphens",

	{"password", "required"}:     "Password is required",
	{"password", "min"}:          "Password must be between 6 and 100 characters",
	{"password", "max"}:          "Password must be between 6 and 100 characters",
	{"password", "nowhitespace"}: "Password cannot contain whitespace",

	{"title", "required"}:  "Task title is required",
	{"title", "min"}:       "Task title must be between 1 and 100 characters",
	{"title", "max"}:       "Task title must be between 1 and 100 characters",
	{"title", "tasktitle"}: "Task title contains invalid characters",

	{"description", "max"}:      "Task description cannot exceed 500 characters",
	{"description", "taskdesc"}: "Task description contains invalid characters",
}

// Messages turns a validation error into user-facing messages. Errors that
// are not validator.ValidationErrors yield a single generic message.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request"}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, Message(fe.Field(), fe.Tag(), fe.Param()))
	}
	return out
}

// Message returns the text for a single failed rule on a field.
func Message(field, tag, param string) string {
	if msg, ok := messages[fieldRule{field, tag}]; ok {
		return msg
	}
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
