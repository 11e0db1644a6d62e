package randomgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPickContactIsValid(t *testing.T) {
	for i := 0; i < 100; i++ {
		contact := PickContact()
		assert.NoError(t, contact.Validate())
	}
}

func TestPickBirthdayRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		birthday := PickBirthday()
		assert.GreaterOrEqual(t, birthday.Year(), 1940)
		assert.Less(t, birthday.Year(), 2010)
		assert.Equal(t, time.UTC, birthday.Location())
	}
}

func TestPickPhone(t *testing.T) {
	assert.Len(t, PickPhone(), 10)
}

func TestUniqueEmail(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		email := UniqueEmail("Erika")
		assert.False(t, seen[email])
		assert.Contains(t, email, "erika.")
		seen[email] = true
	}
}
