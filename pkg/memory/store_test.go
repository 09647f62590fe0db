package memory

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestUpsertPersonByName(t *testing.T) {
	s := NewStore()
	s.UpsertPerson("Rahul", "friend")
	s.UpsertPerson("Rahul", "brother")

	snap := s.Snapshot()
	if len(snap.Profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(snap.Profiles))
	}
	if snap.Profiles[0].Relationship != "brother" {
		t.Fatalf("relationship=%q, want most recent value", snap.Profiles[0].Relationship)
	}
	if snap.Profiles[0].ID == "" {
		t.Fatal("expected a generated id")
	}
}

func TestUpsertIsCaseSensitive(t *testing.T) {
	s := NewStore()
	s.UpsertLocation("Kitchen", "near the stove")
	s.UpsertLocation("kitchen", "downstairs")

	if got := len(s.Snapshot().Locations); got != 2 {
		t.Fatalf("got %d locations, want 2 (names differ by case)", got)
	}
}

func TestUpdateMergesPerCollection(t *testing.T) {
	s := NewStore()
	s.UpsertPerson("Mom", "mother")
	s.UpsertContact("Mom", "555-0100")

	// Replacing only locations must leave the other collections untouched.
	s.Update(Mutation{Locations: []SavedLocation{{ID: "1", Name: "Home", Description: "flat 4"}}})

	snap := s.Snapshot()
	if len(snap.Profiles) != 1 || len(snap.Contacts) != 1 || len(snap.Locations) != 1 {
		t.Fatalf("unexpected collection sizes: %d %d %d", len(snap.Profiles), len(snap.Contacts), len(snap.Locations))
	}
}

func TestSnapshotIsFrozen(t *testing.T) {
	s := NewStore()
	s.UpsertPerson("Mom", "mother")

	snap := s.Snapshot()
	s.UpsertPerson("Dad", "father")

	if len(snap.Profiles) != 1 {
		t.Fatalf("snapshot grew to %d profiles after later mutation", len(snap.Profiles))
	}
	snap.Profiles[0].Name = "mutated"
	if s.Snapshot().Profiles[0].Name == "mutated" {
		t.Fatal("mutating a snapshot leaked into the store")
	}
}

func TestDeleteByID(t *testing.T) {
	s := NewStore()
	p := s.UpsertPerson("Mom", "mother")

	if !s.DeletePersonByID(p.ID) {
		t.Fatal("expected deletion to succeed")
	}
	if s.DeletePersonByID(p.ID) {
		t.Fatal("second deletion should report not found")
	}
	if got := len(s.Snapshot().Profiles); got != 0 {
		t.Fatalf("got %d profiles after delete, want 0", got)
	}
}

func TestContextBlockEmpty(t *testing.T) {
	got := NewStore().Snapshot().ContextBlock()
	want := "[SAVED DATA]\nUser: User\nLocations: None\nPeople: None\nContacts: None\n"
	if got != want {
		t.Fatalf("ContextBlock()=%q, want %q", got, want)
	}
}

func TestContextBlockPopulated(t *testing.T) {
	s := NewStore()
	name := "Priya"
	s.Update(Mutation{UserName: &name})
	s.UpsertLocation("Home", "flat 4")
	s.UpsertLocation("Kitchen", "near the stove")
	s.UpsertPerson("Mom", "mother")
	s.UpsertContact("Mom", "555-0100")

	got := s.Snapshot().ContextBlock()
	if !strings.Contains(got, "User: Priya\n") {
		t.Fatalf("missing user line: %q", got)
	}
	if !strings.Contains(got, "Locations: Home, Kitchen\n") {
		t.Fatalf("missing comma-joined locations: %q", got)
	}
	if !strings.Contains(got, "People: Mom\n") || !strings.Contains(got, "Contacts: Mom\n") {
		t.Fatalf("missing people/contacts: %q", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")

	s := NewStore()
	name := "Priya"
	s.Update(Mutation{UserName: &name})
	s.UpsertLocation("Kitchen", "near the stove")
	s.UpsertContact("Mom", "555-0100")
	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded := NewStore()
	if err := loaded.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	snap := loaded.Snapshot()
	if snap.UserName != "Priya" {
		t.Fatalf("user=%q", snap.UserName)
	}
	if len(snap.Locations) != 1 || snap.Locations[0].Description != "near the stove" {
		t.Fatalf("locations=%v", snap.Locations)
	}
	if len(snap.Contacts) != 1 || snap.Contacts[0].Phone != "555-0100" {
		t.Fatalf("contacts=%v", snap.Contacts)
	}
}

func TestLoadFileMissingIsNotError(t *testing.T) {
	s := NewStore()
	if err := s.LoadFile(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("LoadFile on missing path: %v", err)
	}
}

func TestOnChangeFires(t *testing.T) {
	s := NewStore()
	var last Snapshot
	calls := 0
	s.SetOnChange(func(snap Snapshot) {
		last = snap
		calls++
	})

	s.UpsertPerson("Mom", "mother")
	if calls == 0 {
		t.Fatal("onChange never fired")
	}
	if len(last.Profiles) != 1 {
		t.Fatalf("callback snapshot has %d profiles", len(last.Profiles))
	}
}
