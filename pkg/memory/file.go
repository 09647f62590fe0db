package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// fileRecords is the on-disk shape of the persisted memory collections.
type fileRecords struct {
	User      string             `json:"user"`
	Profiles  []PersonProfile    `json:"profiles"`
	Contacts  []EmergencyContact `json:"contacts"`
	Locations []SavedLocation    `json:"locations"`
}

// LoadFile populates the store from a JSON file. A missing file leaves the
// store empty and is not an error.
func (s *Store) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read memory file %q: %w", path, err)
	}

	var records fileRecords
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("decode memory file %q: %w", path, err)
	}

	user := records.User
	s.Update(Mutation{
		UserName:  &user,
		Profiles:  orEmptyProfiles(records.Profiles),
		Contacts:  orEmptyContacts(records.Contacts),
		Locations: orEmptyLocations(records.Locations),
	})
	return nil
}

// SaveFile writes the current snapshot to a JSON file via rename for
// atomic replacement.
func (s *Store) SaveFile(path string) error {
	return SaveSnapshot(path, s.Snapshot())
}

// SaveSnapshot persists a snapshot to path.
func SaveSnapshot(path string, snap Snapshot) error {
	records := fileRecords{
		User:      snap.UserName,
		Profiles:  snap.Profiles,
		Contacts:  snap.Contacts,
		Locations: snap.Locations,
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory records: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create memory dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write memory file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}

// Mutation collections of nil mean "leave untouched"; the loader always
// replaces, so empty slices stand in for missing arrays.
func orEmptyProfiles(p []PersonProfile) []PersonProfile {
	if p == nil {
		return []PersonProfile{}
	}
	return p
}

func orEmptyContacts(c []EmergencyContact) []EmergencyContact {
	if c == nil {
		return []EmergencyContact{}
	}
	return c
}

func orEmptyLocations(l []SavedLocation) []SavedLocation {
	if l == nil {
		return []SavedLocation{}
	}
	return l
}
