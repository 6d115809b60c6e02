package operation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Checker collects field errors so a caller can report all of them at once.
type Checker struct {
	fields []FieldError
}

func (c *Checker) Add(field, message string) {
	c.fields = append(c.fields, FieldError{Field: field, Message: message})
}

// Check records message against field unless ok.
func (c *Checker) Check(ok bool, field, message string) {
	if !ok {
		c.Add(field, message)
	}
}

func (c *Checker) Required(field, value string) {
	c.Check(strings.TrimSpace(value) != "", field, fmt.Sprintf("%s is required.", field))
}

func (c *Checker) MinLength(field, value string, n int) {
	c.Check(utf8.RuneCountInString(value) >= n, field, fmt.Sprintf("%s must be at least %d characters.", field, n))
}

func (c *Checker) MaxLength(field, value string, n int) {
	c.Check(utf8.RuneCountInString(value) <= n, field, fmt.Sprintf("%s must be at most %d characters.", field, n))
}

func (c *Checker) Email(field, value, message string) {
	c.Check(validate.Var(value, "required,email") == nil, field, message)
}

func (c *Checker) UUID4(field, value, message string) {
	c.Check(validate.Var(value, "required,uuid4") == nil, field, message)
}

// Length checks min <= runes(value) <= max and reports message otherwise.
func (c *Checker) Length(field, value string, min, max int, message string) {
	n := utf8.RuneCountInString(value)
	c.Check(n >= min && n <= max, field, message)
}

// OneOf checks value against the allowed set.
func (c *Checker) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	c.Add(field, fmt.Sprintf("%s must be one of %s.", field, strings.Join(allowed, ", ")))
}

func (c *Checker) Positive(field string, id int64) {
	c.Check(id > 0, field, fmt.Sprintf("%s must be a positive id.", field))
}

// Err returns a *ValidationError when any check failed, nil otherwise.
func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}
