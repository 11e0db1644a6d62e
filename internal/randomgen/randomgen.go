// Package randomgen picks random but plausible contact data for load tests and integration tests.
package randomgen

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	public "gitlab.com/dirk.krummacker/contacts-book/pkg/model"
)

var firstNames = []string{
	"Anna", "Bernd", "Clara", "Dieter", "Erika", "Franz", "Greta", "Heinz", "Ines", "Jonas",
	"Karin", "Lukas", "Maria", "Nils", "Olga", "Peter", "Rudi", "Sabine", "Theo", "Ursula",
}

var lastNames = []string{
	"Bauer", "Becker", "Fischer", "Hoffmann", "Koch", "Lehmann", "Meyer", "Mustermann", "Neumann",
	"Richter", "Schmidt", "Schneider", "Schulz", "Wagner", "Weber", "Wolf", "Zimmermann",
}

// PickFirstName returns a random first name.
func PickFirstName() string {
	return firstNames[rand.IntN(len(firstNames))]
}

// PickLastName returns a random last name.
func PickLastName() string {
	return lastNames[rand.IntN(len(lastNames))]
}

// PickPhone returns a random phone number of ten digits.
func PickPhone() string {
	return fmt.Sprintf("0%09d", rand.IntN(1_000_000_000))
}

// PickBirthday returns a random date between 1940 and the end of 2009.
func PickBirthday() public.Date {
	start := time.Date(1940, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := rand.IntN(70 * 365)
	t := start.AddDate(0, 0, days)
	return public.NewDate(t.Year(), t.Month(), t.Day())
}

// UniqueEmail returns an email address that has never been handed out before.
func UniqueEmail(name string) string {
	return fmt.Sprintf("%s.%s@example.com", strings.ToLower(name), uuid.NewString()[:8])
}

// PickContact returns a complete contact that passes validation.
func PickContact() public.ContactSchema {
	name := PickFirstName()
	birthday := PickBirthday()
	return public.ContactSchema{
		Name:     name,
		Surname:  PickLastName(),
		Email:    UniqueEmail(name),
		Phone:    PickPhone(),
		Birthday: &birthday,
	}
}
