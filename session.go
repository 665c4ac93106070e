package planmark

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"planmark/internal/annotation"
	"planmark/internal/config"
	"planmark/internal/diff"
	"planmark/internal/feedback"
	"planmark/internal/history"
	"planmark/internal/plan"
	"planmark/internal/share"
	"planmark/internal/store"
	"planmark/internal/watcher"
	"planmark/internal/workspace"
)

// Session drives one plan-review sitting: it loads a plan document, parses
// it into blocks, carries the annotation set, snapshots versions, and
// produces diffs, share tokens and feedback reports. All state is held on
// the Session; nothing in this module lives in package-level variables.
type Session struct {
	cfg     *config.Config
	store   *store.Store
	history *history.Store
	codec   *share.Codec

	mu          sync.Mutex
	planPath    string
	project     string
	slug        string
	document    string
	blocks      []plan.Block
	annotations []annotation.Annotation
	watcher     *watcher.PlanWatcher
}

// NewSession creates a session backed by the given configuration
func NewSession(cfg *config.Config) (*Session, error) {
	annStore, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open annotation store: %w", err)
	}

	return &Session{
		cfg:     cfg,
		store:   annStore,
		history: history.NewStore(cfg.HistoryDir),
		codec:   share.NewCodec(cfg.Settings.CompressionLevel),
	}, nil
}

// Close releases the session's resources
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	return s.store.Close()
}

// LoadPlan reads a plan file, resolves its history identity, parses it and
// relocates any previously stored annotations against the fresh parse.
func (s *Session) LoadPlan(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}

	ws, err := workspace.Detect(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("detect workspace: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.planPath = path
	s.document = string(data)
	s.project = ws.Project
	s.slug = history.DeriveSlug(s.document, time.Now())
	s.blocks = plan.Parse(s.document)

	stored, err := s.store.ListByPlan(s.project, s.slug)
	if err != nil {
		return fmt.Errorf("load annotations: %w", err)
	}
	s.annotations = annotation.RelocateAll(stored, s.blocks)

	return nil
}

// Document returns the currently loaded plan text
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// Blocks returns the parsed blocks of the current plan
func (s *Session) Blocks() []plan.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks
}

// Annotations returns the session's annotations in display order
func (s *Session) Annotations() []annotation.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]annotation.Annotation, len(s.annotations))
	copy(out, s.annotations)
	annotation.SortForDisplay(out)
	return out
}

// Annotate creates an annotation from a selection and persists it
func (s *Session) Annotate(sel annotation.Selection, typ annotation.Type, note string) (annotation.Annotation, error) {
	a, err := annotation.New(sel, typ, note, s.cfg.Settings.Author)
	if err != nil {
		return annotation.Annotation{}, err
	}
	return a, s.addAnnotation(a)
}

// AddGlobalComment records a document-wide comment
func (s *Session) AddGlobalComment(note string) (annotation.Annotation, error) {
	a := annotation.NewGlobal(note, s.cfg.Settings.Author)
	return a, s.addAnnotation(a)
}

func (s *Session) addAnnotation(a annotation.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slug == "" {
		return fmt.Errorf("no plan loaded")
	}
	if err := s.store.Save(s.project, s.slug, a); err != nil {
		return fmt.Errorf("persist annotation: %w", err)
	}
	s.annotations = append(s.annotations, a)
	return nil
}

// Snapshot stores the current document as the next history version,
// deduplicating unchanged resubmissions.
func (s *Session) Snapshot() (history.SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.SaveVersion(s.project, s.slug, s.document)
}

// DiffAgainstPrevious diffs the current document against the version
// stored before it. The result is nil when no earlier version exists.
func (s *Session) DiffAgainstPrevious() (*diff.Result, error) {
	s.mu.Lock()
	project, slug, document := s.project, s.slug, s.document
	s.mu.Unlock()

	latest, content, ok, err := s.history.LatestVersion(project, slug)
	if err != nil {
		return nil, fmt.Errorf("read latest version: %w", err)
	}
	if !ok {
		return nil, nil
	}

	// When the current document is already stored as the latest version,
	// diff against the one before it instead.
	if content == document {
		content, ok, err = s.history.GetVersion(project, slug, latest-1)
		if err != nil {
			return nil, fmt.Errorf("read previous version: %w", err)
		}
		if !ok {
			return nil, nil
		}
	}

	res := diff.Compute(content, document)
	return &res, nil
}

// ExportFeedback renders the session's annotations, and the diff against
// the previous version when one exists, as a feedback report.
func (s *Session) ExportFeedback() (string, error) {
	d, err := s.DiffAgainstPrevious()
	if err != nil {
		return "", err
	}
	return feedback.ExportReport(s.Annotations(), d), nil
}

// ShareToken encodes the current document and annotations as a compact
// token for a URL fragment.
func (s *Session) ShareToken() (string, error) {
	return s.codec.Encode(s.Document(), s.Annotations())
}

// RestoreShared decodes a share token and merges its annotations into the
// session. When no plan is loaded the shared document becomes the current
// one; otherwise the shared annotations are relocated against the loaded
// plan and targets that no longer match come back orphaned.
func (s *Session) RestoreShared(token string) error {
	payload, err := s.codec.Decode(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.document == "" {
		s.document = payload.Document
		s.blocks = plan.Parse(s.document)
		s.slug = history.DeriveSlug(s.document, time.Now())
		if s.project == "" {
			s.project = "shared"
		}
	}

	restored := annotation.RelocateAll(payload.Annotations, s.blocks)
	for _, a := range restored {
		if err := s.store.Save(s.project, s.slug, a); err != nil {
			return fmt.Errorf("persist shared annotation: %w", err)
		}
	}
	s.annotations = append(s.annotations, restored...)

	return nil
}

// Watch starts snapshotting the loaded plan file automatically whenever it
// is edited on disk.
func (s *Session) Watch() error {
	s.mu.Lock()
	path := s.planPath
	alreadyWatching := s.watcher != nil
	s.mu.Unlock()

	if path == "" {
		return fmt.Errorf("no plan loaded")
	}
	if alreadyWatching {
		return fmt.Errorf("already watching %s", path)
	}

	w, err := watcher.New(path, s.cfg.WatchDebounce(), func(changed string) {
		if err := s.LoadPlan(changed); err != nil {
			log.Printf("reload plan after edit: %v", err)
			return
		}
		res, err := s.Snapshot()
		if err != nil {
			log.Printf("snapshot plan after edit: %v", err)
			return
		}
		if res.IsNew {
			log.Printf("saved plan version %d for %s", res.Version, changed)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Close()
		return err
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

// Project returns the sanitized workspace identity of the loaded plan
func (s *Session) Project() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

// Slug returns the history identity of the loaded plan
func (s *Session) Slug() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slug
}
