package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
)

// contactColumns lists the columns of the contacts table in the order of model.Contact.
const contactColumns = "id, name, surname, email, phone, birthday"

const insertContact = `
	INSERT INTO contacts (name, surname, email, phone, birthday)
	VALUES (:name, :surname, :email, :phone, :birthday)`

const selectContactWhereId = `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`

const deleteContactWhereId = `DELETE FROM contacts WHERE id = ?`

// ContactStore reads and writes contacts.
type ContactStore struct {
	db *sqlx.DB
}

// NewContactStore returns a store working on the given database handle. The handle can be a real
// database for production use or a mock database within unit tests.
func NewContactStore(db *sqlx.DB) *ContactStore {
	return &ContactStore{db: db}
}

// List returns at most limit contacts, skipping the first offset ones. There is no explicit sort
// key: the order is whatever MySQL returns, which is usually but not necessarily insertion order.
func (s *ContactStore) List(ctx context.Context, limit, offset int) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := s.db.SelectContext(ctx, &contacts,
		`SELECT `+contactColumns+` FROM contacts LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, model.NewStorageError("list contacts", err)
	}
	return contacts, nil
}

// Find returns a contact whose name, surname and email contain the given values, ignoring case.
// Empty values do not restrict the search. If several contacts match, the first one returned by
// the database is picked, which is not deterministic. Find returns nil if no contact matches.
func (s *ContactStore) Find(ctx context.Context, name, surname, email string) (*model.Contact, error) {
	var conditions []string
	var args []any
	for _, filter := range []struct{ column, value string }{
		{"name", name},
		{"surname", surname},
		{"email", email},
	} {
		if filter.value == "" {
			continue
		}
		conditions = append(conditions, "LOWER("+filter.column+") LIKE LOWER(?)")
		args = append(args, containsPattern(filter.value))
	}
	query := `SELECT ` + contactColumns + ` FROM contacts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " LIMIT 1"

	var contact model.Contact
	err := s.db.GetContext(ctx, &contact, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStorageError("find contact", err)
	}
	return &contact, nil
}

// containsPattern turns a search value into a LIKE pattern matching it anywhere. Wildcards in the
// value are matched literally.
func containsPattern(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
	return "%" + escaped + "%"
}

// Get returns the contact with the given id, or nil if there is none.
func (s *ContactStore) Get(ctx context.Context, id int64) (*model.Contact, error) {
	contact, err := getContact(ctx, s.db, id)
	if err != nil {
		return nil, model.NewStorageError("get contact", err)
	}
	return contact, nil
}

func getContact(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Contact, error) {
	var contact model.Contact
	err := sqlx.GetContext(ctx, q, &contact, selectContactWhereId, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Create inserts a contact and returns it as stored, including the newly assigned id.
func (s *ContactStore) Create(ctx context.Context, c model.NewContact) (*model.Contact, error) {
	var created *model.Contact
	err := withTx(ctx, s.db, "create contact", func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, insertContact, c)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		created, err = getContact(ctx, tx, id)
		if err != nil {
			return err
		}
		if created == nil {
			return fmt.Errorf("contact %d vanished after insert", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update writes the values set in the patch, and only those, to the contact with the given id. It
// returns the full contact after the update, or nil if there is no contact with this id. The write
// and the read-back happen in one transaction.
func (s *ContactStore) Update(ctx context.Context, id int64, patch model.ContactPatch) (*model.Contact, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}
	columns := patch.Columns()

	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for _, c := range columns {
		assignments = append(assignments, c.Name+" = ?")
		args = append(args, c.Value)
	}
	args = append(args, id)
	query := "UPDATE contacts SET " + strings.Join(assignments, ", ") + " WHERE id = ?"

	var updated *model.Contact
	err := withTx(ctx, s.db, "update contact", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return nil
		}
		updated, err = getContact(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the contact with the given id permanently. It returns the contact as it was
// right before the deletion, or nil if there is no contact with this id.
func (s *ContactStore) Delete(ctx context.Context, id int64) (*model.Contact, error) {
	var deleted *model.Contact
	err := withTx(ctx, s.db, "delete contact", func(tx *sqlx.Tx) error {
		contact, err := getContact(ctx, tx, id)
		if err != nil || contact == nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteContactWhereId, id); err != nil {
			return err
		}
		deleted = contact
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// UpcomingBirthdays returns all contacts whose birthday falls within the BirthdayWindowDays days
// following today, today included. Only month and day are compared, the year is ignored.
func (s *ContactStore) UpcomingBirthdays(ctx context.Context, today time.Time) ([]model.Contact, error) {
	where, args := newBirthdayWindow(today).where("birthday")
	contacts := []model.Contact{}
	err := s.db.SelectContext(ctx, &contacts,
		`SELECT `+contactColumns+` FROM contacts WHERE `+where, args...)
	if err != nil {
		return nil, model.NewStorageError("upcoming birthdays", err)
	}
	return contacts, nil
}
