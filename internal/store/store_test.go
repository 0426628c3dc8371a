package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	db := testDB(t)

	d := &Draft{
		ThreadID:     "t1",
		RecipientIDs: []string{"u2", "u3"},
		Subject:      "Re: casing delivery",
		Body:         "half-typed reply",
	}
	if err := db.SaveDraft(d); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}

	got, err := db.GetDraft("t1")
	if err != nil {
		t.Fatalf("GetDraft() error = %v", err)
	}
	if got == nil {
		t.Fatal("draft not found")
	}
	if got.Subject != d.Subject || got.Body != d.Body {
		t.Errorf("draft = %+v, want %+v", got, d)
	}
	if len(got.RecipientIDs) != 2 || got.RecipientIDs[0] != "u2" {
		t.Errorf("recipients = %v, want [u2 u3]", got.RecipientIDs)
	}
}

func TestSaveDraftReplacesPerThread(t *testing.T) {
	db := testDB(t)

	if err := db.SaveDraft(&Draft{ThreadID: "t1", Body: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveDraft(&Draft{ThreadID: "t1", Body: "second"}); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetDraft("t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Body != "second" {
		t.Errorf("body = %q, want second (upsert)", got.Body)
	}

	drafts, err := db.ListDrafts()
	if err != nil {
		t.Fatal(err)
	}
	if len(drafts) != 1 {
		t.Errorf("drafts = %d, want 1", len(drafts))
	}
}

func TestNewThreadDraftUsesEmptyKey(t *testing.T) {
	db := testDB(t)

	if err := db.SaveDraft(&Draft{ThreadID: "", Subject: "new subject"}); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetDraft("")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Subject != "new subject" {
		t.Errorf("new-thread draft = %+v", got)
	}
}

func TestGetDraftMissing(t *testing.T) {
	db := testDB(t)

	got, err := db.GetDraft("none")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("draft = %+v, want nil", got)
	}
}

func TestDeleteDraft(t *testing.T) {
	db := testDB(t)

	if err := db.SaveDraft(&Draft{ThreadID: "t1", Body: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteDraft("t1"); err != nil {
		t.Fatalf("DeleteDraft() error = %v", err)
	}
	got, err := db.GetDraft("t1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("draft still present after delete")
	}

	// Deleting a missing draft is fine.
	if err := db.DeleteDraft("t1"); err != nil {
		t.Errorf("second DeleteDraft() error = %v", err)
	}
}
