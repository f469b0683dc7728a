package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var (
	once sync.Once
	inst *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		inst = validator.New(validator.WithRequiredStructEnabled())
		_ = inst.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return inst
}

// Error carries one human readable message per failed rule, in field order.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Struct validates s against its `validate` tags. Failures come back as *Error
// whose messages are taken from the field's `message` tag ("rule=text|rule=text")
// when present.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := &Error{Messages: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		out.Messages = append(out.Messages, messageFor(t, fe))
	}
	return out
}

func messageFor(t reflect.Type, fe validator.FieldError) string {
	if f, ok := t.FieldByName(fe.StructField()); ok {
		for _, part := range strings.Split(f.Tag.Get("message"), "|") {
			rule, text, found := strings.Cut(part, "=")
			if found && strings.TrimSpace(rule) == primaryRule(fe.Tag()) {
				return strings.TrimSpace(text)
			}
		}
	}
	name := fe.Field()
	switch primaryRule(fe.Tag()) {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// primaryRule reduces an or-ed tag such as "email|len=0" to its first rule.
func primaryRule(tag string) string {
	rule, _, _ := strings.Cut(tag, "|")
	return rule
}
