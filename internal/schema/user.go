// Package schema declares the entity descriptors of the application and the
// typed views over their records. Descriptors are defined once, statically,
// and shared by every caller.
package schema

import (
	"fmt"
	"time"

	"github.com/fhirmeds/fhirmeds/internal/orm"
)

// Users is the descriptor of the users table. The salt field precedes the
// password by convention, but the engine's salt-then-hash protocol does not
// depend on the ordering.
var Users = &orm.Descriptor{
	Table: "users",
	Fields: []orm.Field{
		{Name: "id", Type: orm.Integer, PrimaryKey: true},
		{Name: "username", Type: orm.Text, Unique: true},
		{Name: "salt", Type: orm.Text, Salt: true},
		{Name: "password", Type: orm.Text, Hashed: true},
		{Name: "full_name", Type: orm.Text, Sensitive: true},
		{Name: "email", Type: orm.Text, Sensitive: true},
		{Name: "phone_number", Type: orm.Text, Sensitive: true},
		{Name: "home_address", Type: orm.Text, Sensitive: true},
		{Name: "is_admin", Type: orm.Boolean},
	},
}

// User is a typed view over one users row.
//
// Password carries the raw credential before a write and the stored hash
// after a read; it must never be logged either way.
type User struct {
	ID          int64
	Username    string
	Salt        string
	Password    string
	FullName    string
	Email       string
	PhoneNumber string
	HomeAddress string
	IsAdmin     bool
}

// Record converts the user into the engine's record form. The salt is never
// carried in: the engine generates a fresh one on every write. A zero ID is
// omitted so the store assigns the identifier.
func (u *User) Record() orm.Record {
	rec := orm.Record{
		"username":     u.Username,
		"password":     u.Password,
		"full_name":    u.FullName,
		"email":        u.Email,
		"phone_number": u.PhoneNumber,
		"home_address": u.HomeAddress,
		"is_admin":     u.IsAdmin,
	}
	if u.ID > 0 {
		rec["id"] = u.ID
	}
	return rec
}

// UserFromRecord materializes a typed user from a coerced engine record.
func UserFromRecord(rec orm.Record) (*User, error) {
	u := &User{}
	var err error

	if u.ID, err = int64Field(rec, "id"); err != nil {
		return nil, err
	}
	if u.Username, err = textField(rec, "username"); err != nil {
		return nil, err
	}
	if u.Salt, err = textField(rec, "salt"); err != nil {
		return nil, err
	}
	if u.Password, err = textField(rec, "password"); err != nil {
		return nil, err
	}
	if u.FullName, err = textField(rec, "full_name"); err != nil {
		return nil, err
	}
	if u.Email, err = textField(rec, "email"); err != nil {
		return nil, err
	}
	if u.PhoneNumber, err = textField(rec, "phone_number"); err != nil {
		return nil, err
	}
	if u.HomeAddress, err = textField(rec, "home_address"); err != nil {
		return nil, err
	}
	if u.IsAdmin, err = boolField(rec, "is_admin"); err != nil {
		return nil, err
	}

	return u, nil
}

func int64Field(rec orm.Record, name string) (int64, error) {
	v, ok := rec[name].(int64)
	if !ok {
		return 0, fmt.Errorf("record field %s: expected int64, got %T", name, rec[name])
	}
	return v, nil
}

func textField(rec orm.Record, name string) (string, error) {
	v, ok := rec[name].(string)
	if !ok {
		return "", fmt.Errorf("record field %s: expected string, got %T", name, rec[name])
	}
	return v, nil
}

func boolField(rec orm.Record, name string) (bool, error) {
	v, ok := rec[name].(bool)
	if !ok {
		return false, fmt.Errorf("record field %s: expected bool, got %T", name, rec[name])
	}
	return v, nil
}

func timeField(rec orm.Record, name string) (time.Time, error) {
	v, ok := rec[name].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("record field %s: expected time.Time, got %T", name, rec[name])
	}
	return v, nil
}

func floatField(rec orm.Record, name string) (float64, error) {
	v, ok := rec[name].(float64)
	if !ok {
		return 0, fmt.Errorf("record field %s: expected float64, got %T", name, rec[name])
	}
	return v, nil
}
