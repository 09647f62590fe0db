// Package memory holds the user's remembered people, places, and contacts.
//
// The store is the only state mutated by more than one flow (tool calls
// during a live session and direct user edits), so every read and write
// goes through one serialized entry point. Collections are replaced whole
// per update; no partial-collection write is ever observable.
package memory

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// PersonProfile is a remembered acquaintance, keyed by exact name.
type PersonProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

// SavedLocation is a remembered place, keyed by exact name.
type SavedLocation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EmergencyContact is a contact reachable by phone, keyed by exact name.
type EmergencyContact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Snapshot is a frozen copy of the three collections plus the user's
// display name. The snapshot used to seed a session stays frozen for that
// session's lifetime; later mutations take effect on the next session.
type Snapshot struct {
	UserName  string
	Profiles  []PersonProfile
	Contacts  []EmergencyContact
	Locations []SavedLocation
}

// Mutation is a merge-style update. Each non-nil collection replaces the
// stored collection atomically; nil fields leave the collection untouched.
type Mutation struct {
	UserName  *string
	Profiles  []PersonProfile
	Contacts  []EmergencyContact
	Locations []SavedLocation
}

// Store owns the memory collections behind a single serialized entry point.
type Store struct {
	mu        sync.Mutex
	userName  string
	profiles  []PersonProfile
	contacts  []EmergencyContact
	locations []SavedLocation

	onChange func(Snapshot)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetOnChange registers a callback invoked (outside the lock) with the
// post-update snapshot after every successful Update. Used for persistence.
func (s *Store) SetOnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns frozen copies of all collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		UserName:  s.userName,
		Profiles:  append([]PersonProfile(nil), s.profiles...),
		Contacts:  append([]EmergencyContact(nil), s.contacts...),
		Locations: append([]SavedLocation(nil), s.locations...),
	}
}

// Update applies a merge-style mutation atomically.
func (s *Store) Update(m Mutation) {
	s.mu.Lock()
	if m.UserName != nil {
		s.userName = *m.UserName
	}
	if m.Profiles != nil {
		s.profiles = append([]PersonProfile(nil), m.Profiles...)
	}
	if m.Contacts != nil {
		s.contacts = append([]EmergencyContact(nil), m.Contacts...)
	}
	if m.Locations != nil {
		s.locations = append([]SavedLocation(nil), m.Locations...)
	}
	snap := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// UpsertPerson inserts or replaces the profile sharing the same name.
// At most one profile per name survives.
func (s *Store) UpsertPerson(name, relationship string) PersonProfile {
	p := PersonProfile{ID: newID(), Name: name, Relationship: relationship}
	snap := s.Snapshot()
	kept := make([]PersonProfile, 0, len(snap.Profiles)+1)
	for _, existing := range snap.Profiles {
		if existing.Name != name {
			kept = append(kept, existing)
		}
	}
	s.Update(Mutation{Profiles: append(kept, p)})
	return p
}

// UpsertLocation inserts or replaces the location sharing the same name.
func (s *Store) UpsertLocation(name, description string) SavedLocation {
	l := SavedLocation{ID: newID(), Name: name, Description: description}
	snap := s.Snapshot()
	kept := make([]SavedLocation, 0, len(snap.Locations)+1)
	for _, existing := range snap.Locations {
		if existing.Name != name {
			kept = append(kept, existing)
		}
	}
	s.Update(Mutation{Locations: append(kept, l)})
	return l
}

// UpsertContact inserts or replaces the contact sharing the same name.
func (s *Store) UpsertContact(name, phone string) EmergencyContact {
	c := EmergencyContact{ID: newID(), Name: name, Phone: phone}
	snap := s.Snapshot()
	kept := make([]EmergencyContact, 0, len(snap.Contacts)+1)
	for _, existing := range snap.Contacts {
		if existing.Name != name {
			kept = append(kept, existing)
		}
	}
	s.Update(Mutation{Contacts: append(kept, c)})
	return c
}

// DeletePersonByID removes a profile. Explicit user deletion only.
func (s *Store) DeletePersonByID(id string) bool {
	snap := s.Snapshot()
	kept := make([]PersonProfile, 0, len(snap.Profiles))
	removed := false
	for _, p := range snap.Profiles {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if removed {
		s.Update(Mutation{Profiles: kept})
	}
	return removed
}

// DeleteLocationByID removes a saved location.
func (s *Store) DeleteLocationByID(id string) bool {
	snap := s.Snapshot()
	kept := make([]SavedLocation, 0, len(snap.Locations))
	removed := false
	for _, l := range snap.Locations {
		if l.ID == id {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	if removed {
		s.Update(Mutation{Locations: kept})
	}
	return removed
}

// DeleteContactByID removes an emergency contact.
func (s *Store) DeleteContactByID(id string) bool {
	snap := s.Snapshot()
	kept := make([]EmergencyContact, 0, len(snap.Contacts))
	removed := false
	for _, c := range snap.Contacts {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if removed {
		s.Update(Mutation{Contacts: kept})
	}
	return removed
}

// ContextBlock renders the snapshot into the textual context block injected
// into the session instruction at connect time.
func (snap Snapshot) ContextBlock() string {
	user := snap.UserName
	if user == "" {
		user = "User"
	}

	locations := make([]string, 0, len(snap.Locations))
	for _, l := range snap.Locations {
		locations = append(locations, l.Name)
	}
	people := make([]string, 0, len(snap.Profiles))
	for _, p := range snap.Profiles {
		people = append(people, p.Name)
	}
	contacts := make([]string, 0, len(snap.Contacts))
	for _, c := range snap.Contacts {
		contacts = append(contacts, c.Name)
	}

	var b strings.Builder
	b.WriteString("[SAVED DATA]\n")
	b.WriteString("User: " + user + "\n")
	b.WriteString("Locations: " + joinOrNone(locations) + "\n")
	b.WriteString("People: " + joinOrNone(people) + "\n")
	b.WriteString("Contacts: " + joinOrNone(contacts) + "\n")
	return b.String()
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func newID() string {
	return uuid.NewString()
}
