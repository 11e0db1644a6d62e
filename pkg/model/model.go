// Package model contains the request and response documents of the contacts REST API. Clients
// can import it to talk to the service without redefining the JSON layout.
package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the JSON representation of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day. It is stored as midnight UTC.
type Date struct {
	time.Time
}

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in the form YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String returns the date in the form YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Full RFC 3339 timestamps are accepted as well and
// truncated to their date. An empty string is not a date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		return errors.New("invalid date: empty string")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		ts, errTS := time.Parse(time.RFC3339, s)
		if errTS != nil {
			return fmt.Errorf("invalid date %q: %w", s, err)
		}
		parsed = NewDate(ts.Year(), ts.Month(), ts.Day())
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. The MySQL driver hands over time.Time when parseTime=true and raw
// bytes otherwise.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// ContactSchema is the request body for creating a contact. All fields are required.
type ContactSchema struct {
	Name     string `json:"name"     validate:"required,min=3,max=50"`
	Surname  string `json:"surname"  validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Phone    string `json:"phone"    validate:"required,max=10"`
	Birthday *Date  `json:"birthday" validate:"required"`
}

// Validate checks the field constraints of the schema.
func (s ContactSchema) Validate() error {
	return requireDate(validateStruct(s), "birthday", s.Birthday)
}

// ContactUpdateSchema is the request body for updating a contact. Only the fields that are
// present in the JSON are changed.
type ContactUpdateSchema struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=3,max=50"`
	Surname  *string `json:"surname,omitempty"  validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"    validate:"omitempty,max=10"`
	Birthday *Date   `json:"birthday,omitempty"`
}

// Validate checks the field constraints of the schema.
func (s ContactUpdateSchema) Validate() error {
	return requireDate(validateStruct(s), "birthday", s.Birthday)
}

// IsEmpty reports whether the update does not contain any value.
func (s ContactUpdateSchema) IsEmpty() bool {
	return s.Name == nil && s.Surname == nil && s.Email == nil && s.Phone == nil && s.Birthday == nil
}

// ContactResponse is the representation of a stored contact.
type ContactResponse struct {
	Id       int64  `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Birthday Date   `json:"birthday"`
}

// UserSchema is the request body for signing up.
//
// The password must be 5 to 8 characters long. The upper limit is unusually low but is what
// existing clients were built against.
type UserSchema struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=5,max=8"`
}

// Validate checks the field constraints of the schema.
func (s UserSchema) Validate() error {
	return validateStruct(s)
}

// LoginForm is the form body of a login request. The username is the email address of the
// account.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Validate checks the field constraints of the form.
func (f LoginForm) Validate() error {
	return validateStruct(f)
}

// UserResponse is the public representation of a user. It never carries the password hash.
type UserResponse struct {
	Id       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenResponse is returned by login and token refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// NewTokenResponse returns a bearer token response.
func NewTokenResponse(access, refresh string) TokenResponse {
	return TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}

// FieldViolation describes one failed constraint.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError is returned by the Validate methods when input is malformed.
type ValidationError struct {
	Violations []FieldViolation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", v.Field, v.Rule, v.Param))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Rule))
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report the JSON or form name instead of the Go field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// requireDate adds a violation to err if the date is present but zero.
func requireDate(err error, field string, d *Date) error {
	if d == nil || !d.IsZero() {
		return err
	}
	violation := FieldViolation{Field: field, Rule: "required"}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		validationErr.Violations = append(validationErr.Violations, violation)
		return validationErr
	}
	if err != nil {
		return err
	}
	return &ValidationError{Violations: []FieldViolation{violation}}
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	result := &ValidationError{}
	for _, fe := range fieldErrors {
		result.Violations = append(result.Violations, FieldViolation{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return result
}
