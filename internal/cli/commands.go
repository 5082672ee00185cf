package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fhirmeds/fhirmeds/internal/common"
	"github.com/fhirmeds/fhirmeds/internal/orm"
	"github.com/fhirmeds/fhirmeds/internal/schema"
)

// Setup creates every application table. Existing tables are left alone.
func (a *App) Setup(ctx context.Context) error {
	if err := a.users.CreateSchema(ctx); err != nil {
		return err
	}
	if err := a.engine.CreateTable(ctx, schema.Reminders); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Tables created.")
	return nil
}

// Seed creates the tables and loads a small set of demo rows. Running it
// twice fails on the unique username, which keeps the demo data from
// multiplying.
func (a *App) Seed(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}

	demo := []*schema.User{
		{
			Username: "admin",
			Password: "admin",
			FullName: "Site Administrator",
			IsAdmin:  true,
		},
		{
			Username:    "demo_user",
			Password:    "demo",
			FullName:    "Demo User",
			Email:       "demo@example.com",
			PhoneNumber: "555-0100",
			HomeAddress: "1 Example Street",
		},
	}

	for _, u := range demo {
		if err := a.users.Register(ctx, u); err != nil {
			return err
		}
	}

	// Upsert pass: give the demo user a fresh email to exercise the
	// write-by-id path on seeded data.
	stored, _, err := a.users.Login(ctx, "demo_user", "demo")
	if err != nil {
		return err
	}
	stored.Password = "demo"
	stored.Email = "demo.user@example.com"
	if err := a.users.UpdateProfile(ctx, stored); err != nil {
		return err
	}

	reminders := []*schema.Reminder{
		{Title: "Lisinopril", Dosage: 10, RemindAt: time.Now().Add(8 * time.Hour).UTC()},
		{Title: "Metformin", Dosage: 500, RemindAt: time.Now().Add(12 * time.Hour).UTC(), Taken: false},
	}
	for _, r := range reminders {
		if err := a.engine.Insert(ctx, schema.Reminders, r.Record()); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.out, "Demo data loaded.")
	return nil
}

// Register interactively collects a new user's details and stores them.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.in, "Enter user name", a.out)
	if err != nil {
		return err
	}
	fullName, err := GetSimpleText(a.in, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	u := &schema.User{
		Username: username,
		Password: password,
		FullName: fullName,
		Email:    email,
	}

	if err := a.users.Register(ctx, u); err != nil {
		var dup *orm.DuplicateValueError
		if errors.As(err, &dup) {
			fmt.Fprintln(a.out, "That user name is already taken.")
			return nil
		}
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login verifies credentials read from the terminal and prints an access
// token on success.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.in, "Enter user name", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	_, token, err := a.users.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			fmt.Fprintln(a.out, "Invalid user name or password.")
			return nil
		}
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	fmt.Fprintf(a.out, "Token: %s\n", token)
	return nil
}

// Users prints every registered user. Credentials and contact details are
// left out of the listing.
func (a *App) Users(ctx context.Context) error {
	users, err := a.users.ListUsers(ctx)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users registered.")
		return nil
	}

	for _, u := range users {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(a.out, "%6d  %-20s %s\n", u.ID, u.Username, role)
	}
	return nil
}
