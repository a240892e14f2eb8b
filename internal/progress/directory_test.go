package progress

import (
	"testing"
	"time"
)

func TestListUsersAbsentIsEmpty(t *testing.T) {
	s, _ := newTestStore()

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("users = %v, want none", users)
	}
}

func TestUpsertUserInsertsThenMerges(t *testing.T) {
	s, _ := newTestStore()

	if err := s.UpsertUser(DirectoryEntry{ID: "u1", Username: "ana", Email: "a@b.c"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertUser(DirectoryEntry{ID: "u2", Username: "bea", Email: "b@b.c"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertUser(DirectoryEntry{ID: "u1", Username: "ana2", Email: "a@b.c"}); err != nil {
		t.Fatal(err)
	}

	users, err := s.ListUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}
	if users[0].Username != "ana2" {
		t.Errorf("upsert did not replace: %+v", users[0])
	}
}

func TestFindUserByEmailCaseInsensitive(t *testing.T) {
	s, _ := newTestStore()
	if err := s.UpsertUser(DirectoryEntry{ID: "u1", Username: "ana", Email: "Ana@Example.com"}); err != nil {
		t.Fatal(err)
	}

	u, ok, err := s.FindUserByEmail("ana@example.COM")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || u.ID != "u1" {
		t.Errorf("found = %v %+v", ok, u)
	}

	_, ok, err = s.FindUserByEmail("missing@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("found a user that does not exist")
	}
}

func TestActiveUserLifecycle(t *testing.T) {
	s, _ := newTestStore()

	if _, ok, _ := s.ActiveUser(); ok {
		t.Fatal("active user set before sign-in")
	}

	if err := s.SetActiveUser("u1"); err != nil {
		t.Fatal(err)
	}
	id, ok, err := s.ActiveUser()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != "u1" {
		t.Errorf("active = %v %q", ok, id)
	}

	if err := s.ClearActiveUser(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.ActiveUser(); ok {
		t.Error("active user survived sign-out")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src, _ := newTestStore()

	if err := src.UpsertUser(DirectoryEntry{ID: "u1", Username: "ana", Email: "a@b.c", CreatedAt: day0}); err != nil {
		t.Fatal(err)
	}
	if _, err := src.RecordAnswer("u1", "m1", 0, true); err != nil {
		t.Fatal(err)
	}
	if _, err := src.RecordSession("u1", SessionInput{ModuleID: "m1", TotalQuestions: 1, CorrectCount: 1, TimeSpent: 30}); err != nil {
		t.Fatal(err)
	}

	data, err := src.Export("u1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if data.UserInfo == nil || data.UserInfo.Username != "ana" {
		t.Fatalf("userInfo = %+v", data.UserInfo)
	}
	if !data.ExportedAt.Equal(day0) {
		t.Errorf("exportedAt = %v", data.ExportedAt)
	}

	dst, _ := newTestStore()
	if err := dst.Import(data); err != nil {
		t.Fatalf("import: %v", err)
	}

	rec, err := dst.Load("u1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Statistics.TotalQuestions != 1 || rec.Statistics.TotalTime != 30 {
		t.Errorf("imported stats = %+v", rec.Statistics)
	}
	if len(rec.Sessions) != 1 {
		t.Errorf("imported sessions = %d, want 1", len(rec.Sessions))
	}
	u, ok, err := dst.FindUserByEmail("a@b.c")
	if err != nil || !ok {
		t.Fatalf("directory entry not imported: %v %v", ok, err)
	}
	if u.ID != "u1" {
		t.Errorf("imported entry = %+v", u)
	}
}

func TestImportRejectsEmptyRecord(t *testing.T) {
	s, _ := newTestStore()
	err := s.Import(ExportData{ExportedAt: time.Now()})
	if err == nil {
		t.Fatal("expected error for export without userData")
	}
}
