package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Character sets accepted for user and task fields.
var (
	UsernamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	NoWhitespace     = regexp.MustCompile(`^[^\s]+$`)
	TaskTitlePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?()]+$`)
	TaskDescPattern  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?()\n\r]+$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]*regexp.Regexp{
		"username":     UsernamePattern,
		"nowhitespace": NoWhitespace,
		"tasktitle":    TaskTitlePattern,
		"taskdesc":     TaskDescPattern,
	}
	for tag, re := range rules {
		if err := validate.RegisterValidation(tag, matcher(re)); err != nil {
			panic(err)
		}
	}
}

// Struct validates s and returns one message per failed field, or nil.
func Struct(s any) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	return Messages(err)
}

func matcher(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// jsonFieldName reports fields by their JSON name so messages line up with
// what the client sent.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
