package model

import (
	"time"

	public "gitlab.com/dirk.krummacker/contacts-book/pkg/model"
)

// Contact is the data structure for a person that we know.
type Contact struct {
	Id       int64       `json:"id"       db:"id"`
	Name     string      `json:"name"     db:"name"`
	Surname  string      `json:"surname"  db:"surname"`
	Email    string      `json:"email"    db:"email"`
	Phone    string      `json:"phone"    db:"phone"`
	Birthday public.Date `json:"birthday" db:"birthday"`
}

// NewContact holds the values of a contact that is about to be created.
type NewContact struct {
	Name     string      `db:"name"`
	Surname  string      `db:"surname"`
	Email    string      `db:"email"`
	Phone    string      `db:"phone"`
	Birthday public.Date `db:"birthday"`
}

// ContactPatch describes a partial update of a contact. Only non-nil fields are written.
type ContactPatch struct {
	Name     *string
	Surname  *string
	Email    *string
	Phone    *string
	Birthday *public.Date
}

// Column is one column assignment of a patch.
type Column struct {
	Name  string
	Value any
}

// Columns returns the assignments of the patch in a stable order.
func (p ContactPatch) Columns() []Column {
	var columns []Column
	if p.Name != nil {
		columns = append(columns, Column{"name", *p.Name})
	}
	if p.Surname != nil {
		columns = append(columns, Column{"surname", *p.Surname})
	}
	if p.Email != nil {
		columns = append(columns, Column{"email", *p.Email})
	}
	if p.Phone != nil {
		columns = append(columns, Column{"phone", *p.Phone})
	}
	if p.Birthday != nil {
		columns = append(columns, Column{"birthday", *p.Birthday})
	}
	return columns
}

// IsEmpty reports whether the patch would not change anything.
func (p ContactPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// User is an account that can log in. Password holds the bcrypt hash, never the plain text.
type User struct {
	Id           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Password     string    `db:"password"`
	RefreshToken *string   `db:"refresh_token"`
	CreatedAt    time.Time `db:"created_at"`
}

// NewUser holds the values of a user that is about to be created.
type NewUser struct {
	Username string `db:"username"`
	Email    string `db:"email"`
	Password string `db:"password"`
}
