package schema

import (
	"time"

	"github.com/fhirmeds/fhirmeds/internal/orm"
)

// Reminders is the descriptor of the medication reminders table.
var Reminders = &orm.Descriptor{
	Table: "reminders",
	Fields: []orm.Field{
		{Name: "id", Type: orm.Integer, PrimaryKey: true},
		{Name: "title", Type: orm.Text},
		{Name: "dosage", Type: orm.Decimal},
		{Name: "remind_at", Type: orm.Timestamp},
		{Name: "taken", Type: orm.Boolean},
	},
}

// Reminder is a typed view over one reminders row.
type Reminder struct {
	ID       int64
	Title    string
	Dosage   float64
	RemindAt time.Time
	Taken    bool
}

func (r *Reminder) Record() orm.Record {
	rec := orm.Record{
		"title":     r.Title,
		"dosage":    r.Dosage,
		"remind_at": r.RemindAt,
		"taken":     r.Taken,
	}
	if r.ID > 0 {
		rec["id"] = r.ID
	}
	return rec
}

func ReminderFromRecord(rec orm.Record) (*Reminder, error) {
	r := &Reminder{}
	var err error

	if r.ID, err = int64Field(rec, "id"); err != nil {
		return nil, err
	}
	if r.Title, err = textField(rec, "title"); err != nil {
		return nil, err
	}
	if r.Dosage, err = floatField(rec, "dosage"); err != nil {
		return nil, err
	}
	if r.RemindAt, err = timeField(rec, "remind_at"); err != nil {
		return nil, err
	}
	if r.Taken, err = boolField(rec, "taken"); err != nil {
		return nil, err
	}

	return r, nil
}
