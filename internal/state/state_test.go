package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshharrison/critpath/internal/reporter"
)

func report(id, name string, at time.Time, total float64) *reporter.Report {
	return &reporter.Report{
		ID:           id,
		Name:         name,
		CreatedAt:    at,
		TotalDelay:   total,
		DisplayScale: 1,
		CriticalPath: []string{"a", "b"},
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path, err := s.Save(report("sta-cir1-1", "cir1.txt", base, 1.6))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "sta-cir1-1.json" {
		t.Errorf("unexpected path %s", path)
	}
	if !s.Exists("sta-cir1-1") {
		t.Error("expected report to exist")
	}

	loaded, err := s.Load("sta-cir1-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.TotalDelay != 1.6 {
		t.Errorf("expected total delay 1.6, got %v", loaded.TotalDelay)
	}
	if !loaded.CreatedAt.Equal(base) {
		t.Errorf("created_at mismatch: %v", loaded.CreatedAt)
	}
	if len(loaded.CriticalPath) != 2 {
		t.Errorf("critical path mismatch: %v", loaded.CriticalPath)
	}
}

func TestSave_NoID(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Save(&reporter.Report{}); err == nil {
		t.Fatal("expected error for report without id")
	}
}

func TestLoad_Missing(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("nope"); err == nil {
		t.Fatal("expected error for missing report")
	}
}

func TestList_Empty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))

	reports, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("expected no reports, got %d", len(reports))
	}
}

func TestListOrderAndLatest(t *testing.T) {
	s := New(t.TempDir())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, r := range []*reporter.Report{
		report("r3", "cir2.txt", base.Add(2*time.Hour), 1.6),
		report("r1", "cir1.txt", base, 1.6),
		report("r2", "cir1.txt", base.Add(time.Hour), 2.0),
	} {
		if _, err := s.Save(r); err != nil {
			t.Fatalf("Save %s: %v", r.ID, err)
		}
	}

	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	reports, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	for i, want := range []string{"r1", "r2", "r3"} {
		if reports[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, reports[i].ID)
		}
	}

	latest, err := s.Latest("")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != "r3" {
		t.Errorf("expected r3, got %s", latest.ID)
	}

	latest, err = s.Latest("cir1.txt")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != "r2" {
		t.Errorf("expected r2, got %s", latest.ID)
	}

	latest, err = s.Latest("cir9.txt")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil, got %s", latest.ID)
	}
}

func TestList_CorruptFile(t *testing.T) {
	s := New(t.TempDir())
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "bad.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.List(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestClean(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".critpath")
	s := New(root)

	if _, err := s.Save(report("r1", "cir1.txt", time.Now(), 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Error("expected state dir removed")
	}
}

func TestNew_DefaultDir(t *testing.T) {
	s := New("")
	if s.Dir() != filepath.Join(".critpath", "history") {
		t.Errorf("unexpected default dir %s", s.Dir())
	}
}

func TestSave_SameIDKeepsBoth(t *testing.T) {
	s := New(t.TempDir())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := report("sta-cir1", "cir1.txt", at, 1.6)
	second := report("sta-cir1", "cir1.txt", at, 2.0)
	third := report("sta-cir1", "cir1.txt", at, 2.5)

	for _, r := range []*reporter.Report{first, second, third} {
		if _, err := s.Save(r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	if first.ID != "sta-cir1" || second.ID != "sta-cir1-2" || third.ID != "sta-cir1-3" {
		t.Errorf("unexpected ids %s, %s, %s", first.ID, second.ID, third.ID)
	}

	reports, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 stored reports, got %d", len(reports))
	}

	loaded, err := s.Load("sta-cir1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.TotalDelay != 1.6 {
		t.Errorf("first report was overwritten: total %v", loaded.TotalDelay)
	}
}
