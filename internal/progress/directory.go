package progress

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DirectoryEntry is one registered user in the directory list. The
// directory is stored apart from per-user records, keyed by the same id.
type DirectoryEntry struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    time.Time `json:"lastLogin"`
}

// ListUsers returns all registered users. An absent or unreadable list
// is treated as empty.
func (s *Store) ListUsers() ([]DirectoryEntry, error) {
	raw, ok, err := s.kv.Get(usersListKey)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var users []DirectoryEntry
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, nil
	}
	return users, nil
}

// FindUserByEmail looks a user up by email, case-insensitively.
func (s *Store) FindUserByEmail(email string) (DirectoryEntry, bool, error) {
	users, err := s.ListUsers()
	if err != nil {
		return DirectoryEntry{}, false, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return DirectoryEntry{}, false, nil
}

// UpsertUser inserts the entry, or merges it over the existing entry
// with the same id.
func (s *Store) UpsertUser(entry DirectoryEntry) error {
	users, err := s.ListUsers()
	if err != nil {
		return err
	}

	found := false
	for i, u := range users {
		if u.ID == entry.ID {
			users[i] = entry
			found = true
			break
		}
	}
	if !found {
		users = append(users, entry)
	}

	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal users list: %w", err)
	}
	if err := s.kv.Set(usersListKey, string(raw)); err != nil {
		return fmt.Errorf("save users list: %w", err)
	}
	return nil
}

// SetActiveUser remembers which user is signed in on this device.
func (s *Store) SetActiveUser(userID string) error {
	if err := s.kv.Set(activeUserKey, userID); err != nil {
		return fmt.Errorf("set active user: %w", err)
	}
	return nil
}

// ActiveUser returns the signed-in user id, if any.
func (s *Store) ActiveUser() (string, bool, error) {
	id, ok, err := s.kv.Get(activeUserKey)
	if err != nil {
		return "", false, fmt.Errorf("get active user: %w", err)
	}
	return id, ok && id != "", nil
}

// ClearActiveUser signs the device out.
func (s *Store) ClearActiveUser() error {
	if err := s.kv.Remove(activeUserKey); err != nil {
		return fmt.Errorf("clear active user: %w", err)
	}
	return nil
}

// ExportData is a portable backup of one user: directory entry plus the
// full record.
type ExportData struct {
	UserInfo   *DirectoryEntry `json:"userInfo,omitempty"`
	UserData   UserRecord      `json:"userData"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// Export captures a backup of one user.
func (s *Store) Export(userID string) (ExportData, error) {
	rec, err := s.Load(userID)
	if err != nil {
		return ExportData{}, err
	}

	out := ExportData{UserData: *rec, ExportedAt: s.now()}
	users, err := s.ListUsers()
	if err != nil {
		return ExportData{}, err
	}
	for _, u := range users {
		if u.ID == userID {
			entry := u
			out.UserInfo = &entry
			break
		}
	}
	return out, nil
}

// Import restores a previously exported user: directory entry first,
// then the record.
func (s *Store) Import(data ExportData) error {
	if data.UserInfo != nil {
		if err := s.UpsertUser(*data.UserInfo); err != nil {
			return err
		}
	}
	if data.UserData.UserID == "" {
		return fmt.Errorf("%w: export has no userData", ErrValidation)
	}
	rec := data.UserData
	return s.Save(rec.UserID, &rec)
}
