package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/joshharrison/critpath/internal/reporter"
)

const stateDir = ".critpath"
const historyDir = "history"

// Store persists analysis reports as one JSON file per run.
type Store struct {
	root string

	mu sync.Mutex
}

// New returns a Store rooted at dir. An empty dir means ".critpath" in the
// working directory.
func New(dir string) *Store {
	if dir == "" {
		dir = stateDir
	}
	return &Store{root: dir}
}

// Dir returns the directory reports are written to.
func (s *Store) Dir() string {
	return filepath.Join(s.root, historyDir)
}

// Save writes rep to <dir>/history/<id>.json and returns the path. If a
// report with the same id is already stored, rep.ID gets a numeric suffix
// ("-2", "-3", ...) so earlier runs are never overwritten.
func (s *Store) Save(rep *reporter.Report) (string, error) {
	if rep.ID == "" {
		return "", fmt.Errorf("report has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return "", fmt.Errorf("create history dir: %w", err)
	}

	if s.Exists(rep.ID) {
		base := rep.ID
		for n := 2; ; n++ {
			if id := fmt.Sprintf("%s-%d", base, n); !s.Exists(id) {
				rep.ID = id
				break
			}
		}
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(s.Dir(), rep.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Load reads the report with the given id.
func (s *Store) Load(id string) (*reporter.Report, error) {
	return readReport(filepath.Join(s.Dir(), id+".json"))
}

// Exists checks if a report with the given id is stored.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(filepath.Join(s.Dir(), id+".json"))
	return err == nil
}

// List returns every stored report, oldest first. A missing history
// directory is an empty list.
func (s *Store) List() ([]*reporter.Report, error) {
	entries, err := os.ReadDir(s.Dir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var reports []*reporter.Report
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rep, err := readReport(filepath.Join(s.Dir(), e.Name()))
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID < reports[j].ID
		}
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
	return reports, nil
}

// Latest returns the most recent report, optionally restricted to one
// circuit name. It returns nil when nothing matches.
func (s *Store) Latest(name string) (*reporter.Report, error) {
	reports, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := len(reports) - 1; i >= 0; i-- {
		if name == "" || reports[i].Name == name {
			return reports[i], nil
		}
	}
	return nil, nil
}

// Clean removes the state directory.
func (s *Store) Clean() error {
	return os.RemoveAll(s.root)
}

func readReport(path string) (*reporter.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var rep reporter.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", filepath.Base(path), err)
	}
	return &rep, nil
}
