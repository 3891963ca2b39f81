// Package validation checks user input before it reaches the API. Failures are reported as
// an ordered list of messages meant to be shown to the user verbatim.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/shiplabel-dev/shiplabel/internal/models"
)

// Errors is the list of problems found in one form
type Errors struct {
	Messages []string
}

func (e *Errors) Error() string {
	return "Validation Errors:\n" + strings.Join(e.Messages, "\n")
}

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New()

		// Report json names so messages read like the form labels
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		v.RegisterValidation("numeric_value", func(fl validator.FieldLevel) bool {
			_, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
			return err == nil
		})
		v.RegisterValidation("positive_value", func(fl validator.FieldLevel) bool {
			f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
			return err == nil && f > 0
		})

		validate = v
	})
	return validate
}

// Login validates a login form
func Login(form models.LoginForm) error {
	if form.Email == "" || form.Password == "" {
		return &Errors{Messages: []string{"Please fill out all required fields"}}
	}
	return credentialErrors(form)
}

// Register validates a registration form
func Register(form models.RegisterForm) error {
	if form.Name == "" || form.Email == "" || form.Password == "" || form.ConfirmPassword == "" {
		return &Errors{Messages: []string{"All fields are required"}}
	}
	return credentialErrors(form)
}

// credentialMessages maps the failing tag of the login and register forms to its message.
// The slice order is the order messages are reported in.
var credentialMessages = []struct {
	tag string
	msg string
}{
	{"eqfield", "Passwords don't match"},
	{"loose_email", "Please enter a valid email address!"},
	{"min", "Password must be at least 6 characters long!"},
}

func credentialErrors(form any) error {
	fieldErrs, err := check(form)
	if err != nil || len(fieldErrs) == 0 {
		return err
	}

	failed := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		failed[fe.Tag()] = true
	}

	var out Errors
	for _, m := range credentialMessages {
		if failed[m.tag] {
			out.Messages = append(out.Messages, m.msg)
		}
	}
	if len(out.Messages) == 0 {
		return nil
	}
	return &out
}

// Shipment validates an order-label form. Every problem is reported, in form order.
func Shipment(form models.ShipmentForm) error {
	fieldErrs, err := check(form)
	if err != nil || len(fieldErrs) == 0 {
		return err
	}

	out := &Errors{Messages: make([]string, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Messages = append(out.Messages, shipmentMessage(fe))
	}
	return out
}

func shipmentMessage(fe validator.FieldError) string {
	// Namespace looks like ShipmentForm.sender.name
	parts := strings.Split(fe.Namespace(), ".")
	section := ""
	if len(parts) >= 3 {
		section = capitalize(parts[len(parts)-2]) + " "
	}
	label := section + fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "numeric_value":
		return fmt.Sprintf("%s must be a valid number.", label)
	case "positive_value":
		return fmt.Sprintf("%s must be greater than 0.", label)
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

func check(form any) (validator.ValidationErrors, error) {
	err := instance().Struct(form)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("failed to validate form: %w", err)
	}
	return fieldErrs, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
