package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		s.Close()
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.CredentialRepo()
	ctx := context.Background()

	cred, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if cred != nil {
		t.Fatalf("Load empty = %+v, want nil", cred)
	}

	saved := time.UnixMilli(1_700_000_000_000)
	if err := repo.Save(ctx, Credential{Token: "tok-1", UserID: "u1", Username: "sara", SavedAt: saved}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, Credential{Token: "tok-2", UserID: "u2", Username: "omar", SavedAt: saved}); err != nil {
		t.Fatalf("Save replace: %v", err)
	}

	cred, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cred == nil {
		t.Fatal("Load = nil, want credential")
	}
	if cred.Token != "tok-2" || cred.Username != "omar" || cred.UserID != "u2" {
		t.Errorf("Load = %+v, want the replaced credential", cred)
	}
	if !cred.SavedAt.Equal(saved) {
		t.Errorf("SavedAt = %v, want %v", cred.SavedAt, saved)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear twice: %v", err)
	}
	cred, _ = repo.Load(ctx)
	if cred != nil {
		t.Errorf("Load after Clear = %+v, want nil", cred)
	}
}

func TestAttemptAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []AttemptRecord{
		{ID: "a1", Kind: "lesson", TrackID: "t1", LessonID: "l1", Correct: 2, Total: 3, SubmittedAt: base},
		{ID: "a2", Kind: "lesson", TrackID: "t1", LessonID: "l1", Correct: 3, Total: 3, Passed: true, SubmittedAt: base.Add(time.Minute)},
		{ID: "a3", Kind: "final", TrackID: "t1", Correct: 5, Total: 5, Passed: true, SubmittedAt: base.Add(2 * time.Minute)},
		{ID: "a4", Kind: "practice", QuizID: "q9", Correct: 1, Total: 4, SubmittedAt: base.Add(3 * time.Minute)},
	}
	for _, r := range records {
		if err := repo.Append(ctx, r); err != nil {
			t.Fatalf("Append(%s): %v", r.ID, err)
		}
	}

	if err := repo.Append(ctx, records[0]); err == nil {
		t.Error("Append duplicate id = nil, want error")
	}

	all, err := repo.Recent(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Recent len = %d, want 4", len(all))
	}
	if all[0].ID != "a4" || all[3].ID != "a1" {
		t.Errorf("Recent order = %s..%s, want a4..a1", all[0].ID, all[3].ID)
	}
	if !all[1].Passed || all[1].Kind != "final" {
		t.Errorf("all[1] = %+v, want passed final", all[1])
	}

	tests := []struct {
		name string
		opts QueryOpts
		want []string
	}{
		{"limit", QueryOpts{Limit: 2}, []string{"a4", "a3"}},
		{"kind", QueryOpts{Kind: "lesson"}, []string{"a2", "a1"}},
		{"track", QueryOpts{TrackID: "t1", Limit: 1}, []string{"a3"}},
		{"window", QueryOpts{From: base.Add(time.Minute), To: base.Add(2 * time.Minute)}, []string{"a3", "a2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Recent(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, rec := range got {
				if rec.ID != tt.want[i] {
					t.Errorf("got[%d] = %s, want %s", i, rec.ID, tt.want[i])
				}
			}
		})
	}
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "edu.db")
	t.Setenv("EDUMASTER_DB", p)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != p {
		t.Errorf("DefaultDBPath = %q, want %q", got, p)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EDUMASTER_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	want := filepath.Join(dir, "edumaster", "edumaster.db")
	if got != want {
		t.Errorf("DefaultDBPath = %q, want %q", got, want)
	}
}
