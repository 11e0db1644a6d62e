package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContact() ContactSchema {
	birthday := NewDate(1969, time.March, 4)
	return ContactSchema{
		Name:     "Erika",
		Surname:  "Mustermann",
		Email:    "erika@example.com",
		Phone:    "0815471100",
		Birthday: &birthday,
	}
}

// violationFields returns the names of the fields that failed validation.
func violationFields(t *testing.T, err error) []string {
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	var fields []string
	for _, v := range validationErr.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestDateJSON(t *testing.T) {
	var contact ContactSchema
	err := json.Unmarshal([]byte(`{"birthday": "1969-03-04"}`), &contact)
	require.NoError(t, err)
	assert.Equal(t, NewDate(1969, time.March, 4), *contact.Birthday)

	out, err := json.Marshal(ContactResponse{Id: 1, Birthday: NewDate(1960, time.April, 13)})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"birthday":"1960-04-13"`)
}

// TestDateJSONTimestamp verifies that clients sending full timestamps still get the date part.
func TestDateJSONTimestamp(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"1969-03-02T00:00:00Z"`), &d))
	assert.Equal(t, NewDate(1969, time.March, 2), d)
}

func TestDateJSONInvalid(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"02.03.1969"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"1969-13-40"`), &d))
}

// TestDateJSONEmpty expects an empty string to be rejected instead of becoming the zero date.
func TestDateJSONEmpty(t *testing.T) {
	var contact ContactSchema
	assert.Error(t, json.Unmarshal([]byte(`{"birthday": ""}`), &contact))

	var update ContactUpdateSchema
	assert.Error(t, json.Unmarshal([]byte(`{"birthday": ""}`), &update))
}

func TestDateJSONNull(t *testing.T) {
	var update ContactUpdateSchema
	require.NoError(t, json.Unmarshal([]byte(`{"birthday": null}`), &update))
	assert.Nil(t, update.Birthday)
	assert.True(t, update.IsEmpty())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1974, time.November, 29, 13, 5, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(1974, time.November, 29), d)

	require.NoError(t, d.Scan([]byte("1980-01-27")))
	assert.Equal(t, NewDate(1980, time.January, 27), d)

	require.NoError(t, d.Scan("2009-03-31 00:00:00"))
	assert.Equal(t, NewDate(2009, time.March, 31), d)

	assert.Error(t, d.Scan(42))
}

func TestContactSchemaValidate(t *testing.T) {
	assert.NoError(t, validContact().Validate())

	c := validContact()
	c.Name = "Jo"
	assert.Equal(t, []string{"name"}, violationFields(t, c.Validate()))

	c = validContact()
	c.Surname = "Abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"
	assert.Equal(t, []string{"surname"}, violationFields(t, c.Validate()))

	c = validContact()
	c.Email = "not-an-email"
	assert.Equal(t, []string{"email"}, violationFields(t, c.Validate()))

	c = validContact()
	c.Phone = "+49 0815 4711"
	assert.Equal(t, []string{"phone"}, violationFields(t, c.Validate()))

	c = validContact()
	c.Birthday = nil
	assert.Equal(t, []string{"birthday"}, violationFields(t, c.Validate()))
}

func TestContactSchemaValidateEmpty(t *testing.T) {
	fields := violationFields(t, ContactSchema{}.Validate())
	assert.ElementsMatch(t, []string{"name", "surname", "email", "phone", "birthday"}, fields)
}

func TestContactUpdateSchemaValidate(t *testing.T) {
	assert.NoError(t, ContactUpdateSchema{}.Validate())
	assert.True(t, ContactUpdateSchema{}.IsEmpty())

	phone := "0123456789"
	update := ContactUpdateSchema{Phone: &phone}
	assert.NoError(t, update.Validate())
	assert.False(t, update.IsEmpty())

	name := "Al"
	email := "broken"
	fields := violationFields(t, ContactUpdateSchema{Name: &name, Email: &email}.Validate())
	assert.ElementsMatch(t, []string{"name", "email"}, fields)
}

func TestContactSchemaValidateZeroBirthday(t *testing.T) {
	contact := validContact()
	contact.Birthday = &Date{}
	assert.Equal(t, []string{"birthday"}, violationFields(t, contact.Validate()))

	contact.Name = "Jo"
	assert.ElementsMatch(t, []string{"name", "birthday"}, violationFields(t, contact.Validate()))

	update := ContactUpdateSchema{Birthday: &Date{}}
	assert.Equal(t, []string{"birthday"}, violationFields(t, update.Validate()))
}

func TestUserSchemaValidate(t *testing.T) {
	user := UserSchema{Username: "erika", Email: "erika@example.com", Password: "secret"}
	assert.NoError(t, user.Validate())

	user.Password = "abcd"
	assert.Equal(t, []string{"password"}, violationFields(t, user.Validate()))

	user.Password = "abcdefghi"
	assert.Equal(t, []string{"password"}, violationFields(t, user.Validate()))
}

func TestLoginFormValidate(t *testing.T) {
	assert.NoError(t, LoginForm{Username: "erika@example.com", Password: "secret"}.Validate())
	fields := violationFields(t, LoginForm{}.Validate())
	assert.ElementsMatch(t, []string{"username", "password"}, fields)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Violations: []FieldViolation{
		{Field: "name", Rule: "min", Param: "3"},
		{Field: "email", Rule: "email"},
	}}
	assert.Equal(t, "validation failed: name: min=3, email: email", err.Error())
}
