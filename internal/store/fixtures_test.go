package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/spcet/lostfound/internal/model"
)

func mustStudent(t *testing.T, db *sql.DB, roll, name string) *model.Student {
	t.Helper()
	s, err := CreateStudent(context.Background(), db, model.Student{
		RollNumber: roll,
		FullName:   name,
		Department: "CSE",
		Year:       "3",
		DOB:        "2003-04-12",
	})
	if err != nil {
		t.Fatalf("CreateStudent(%s): %v", roll, err)
	}
	return s
}

func mustItem(t *testing.T, db *sql.DB, studentID int64, itemType, description string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), db, NewItem{
		ItemType:      itemType,
		Description:   description,
		Location:      "Library",
		Date:          "2024-03-01",
		Time:          "10:30",
		SecretMessage: "scratch near the hinge",
		StudentID:     studentID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func mustAdmin(t *testing.T, db *sql.DB, username string) *model.Admin {
	t.Helper()
	a, err := CreateAdmin(context.Background(), db, username, "Desk Admin", "hash", model.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return a
}
