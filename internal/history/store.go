// internal/history/store.go
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

const versionExt = ".md"

var versionFileRe = regexp.MustCompile(`^(\d{3,})\.md$`)

// Store persists numbered full-text snapshots of a plan under
// baseDir/{project}/{slug}/. The numbered files themselves are the index;
// no separate manifest is kept.
type Store struct {
	baseDir string
}

// NewStore creates a version store rooted at baseDir
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// VersionInfo describes one stored version
type VersionInfo struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// SaveResult reports the outcome of a SaveVersion call
type SaveResult struct {
	Version int  `json:"version"`
	IsNew   bool `json:"is_new"`
}

// planDir returns the directory holding versions for one plan
func (s *Store) planDir(project, slug string) string {
	return filepath.Join(s.baseDir, project, slug)
}

func (s *Store) versionPath(project, slug string, version int) string {
	return filepath.Join(s.planDir(project, slug), fmt.Sprintf("%03d%s", version, versionExt))
}

// SaveVersion stores content as the next version for (project, slug).
// A resubmission byte-identical to the current latest version writes
// nothing and returns the existing version number with IsNew false.
func (s *Store) SaveVersion(project, slug, content string) (SaveResult, error) {
	versions, err := s.ListVersions(project, slug)
	if err != nil {
		return SaveResult{}, fmt.Errorf("list versions: %w", err)
	}

	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1].Version + 1
	}

	if next > 1 {
		prev, ok, err := s.GetVersion(project, slug, next-1)
		if err != nil {
			return SaveResult{}, fmt.Errorf("read previous version: %w", err)
		}
		if ok && prev == content {
			return SaveResult{Version: next - 1, IsNew: false}, nil
		}
	}

	dir := s.planDir(project, slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SaveResult{}, fmt.Errorf("create plan dir: %w", err)
	}
	if err := os.WriteFile(s.versionPath(project, slug, next), []byte(content), 0644); err != nil {
		return SaveResult{}, fmt.Errorf("write version: %w", err)
	}

	return SaveResult{Version: next, IsNew: true}, nil
}

// GetVersion reads the content of one stored version. A missing version
// returns ok=false rather than an error.
func (s *Store) GetVersion(project, slug string, version int) (string, bool, error) {
	data, err := os.ReadFile(s.versionPath(project, slug, version))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read version %d: %w", version, err)
	}
	return string(data), true, nil
}

// LatestVersion returns the highest stored version, or ok=false when the
// plan has no history yet.
func (s *Store) LatestVersion(project, slug string) (int, string, bool, error) {
	versions, err := s.ListVersions(project, slug)
	if err != nil {
		return 0, "", false, err
	}
	if len(versions) == 0 {
		return 0, "", false, nil
	}
	n := versions[len(versions)-1].Version
	content, ok, err := s.GetVersion(project, slug, n)
	if err != nil || !ok {
		return 0, "", false, err
	}
	return n, content, true, nil
}

// ListVersions enumerates stored versions ascending by number
func (s *Store) ListVersions(project, slug string) ([]VersionInfo, error) {
	entries, err := os.ReadDir(s.planDir(project, slug))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read plan dir: %w", err)
	}

	var versions []VersionInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := versionFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		versions = append(versions, VersionInfo{Version: n, Timestamp: info.ModTime()})
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
	return versions, nil
}

// CountVersions returns the number of stored versions for a plan
func (s *Store) CountVersions(project, slug string) (int, error) {
	versions, err := s.ListVersions(project, slug)
	if err != nil {
		return 0, err
	}
	return len(versions), nil
}
