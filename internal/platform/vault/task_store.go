package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/store"
)

// taskExt is the file extension of task records.
const taskExt = ".md"

// TaskStore implements the store.TaskStore interface on a directory
// tree rooted at root, with one subdirectory per task state.
type TaskStore struct {
	root   string
	logger *slog.Logger
}

// NewTaskStore creates a filesystem task store rooted at root, creating
// every state directory that does not exist yet. If logger is nil, the
// default logger is used.
func NewTaskStore(root string, logger *slog.Logger) (*TaskStore, error) {
	if root == "" {
		return nil, errors.New("vault root cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	for _, state := range domain.TaskStates {
		dir := filepath.Join(root, string(state))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", store.ErrIO, dir, err)
		}
	}

	return &TaskStore{
		root:   root,
		logger: logger.With(slog.String("component", "task_store")),
	}, nil
}

// Ensure TaskStore implements store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

// List implements store.TaskStore.List. IDs are returned in
// lexicographic order; hidden files and non-record files are skipped.
func (s *TaskStore) List(ctx context.Context, state domain.TaskState) ([]store.TaskRef, error) {
	dir := filepath.Join(s.root, string(state))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing %s: %v", store.ErrIO, dir, err)
	}

	refs := make([]store.TaskRef, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, taskExt) {
			continue
		}
		refs = append(refs, store.TaskRef{
			State: state,
			ID:    strings.TrimSuffix(name, taskExt),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })

	s.logger.Debug("listed tasks", "state", state, "count", len(refs))
	return refs, nil
}

// Read implements store.TaskStore.Read.
func (s *TaskStore) Read(ctx context.Context, ref store.TaskRef) (*domain.Task, error) {
	path := s.taskPath(ref)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", store.ErrIO, path, err)
	}

	return domain.NewTask(ref.ID, ref.State, string(data))
}

// Write implements store.TaskStore.Write.
func (s *TaskStore) Write(ctx context.Context, ref store.TaskRef, content string) error {
	path := s.taskPath(ref)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", store.ErrIO, filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", store.ErrIO, path, err)
	}

	s.logger.Debug("wrote task", "task_id", ref.ID, "state", ref.State, "chars", len(content))
	return nil
}

// Move implements store.TaskStore.Move. The move is a single rename:
// atomic on POSIX filesystems, and on failure the source is unchanged.
func (s *TaskStore) Move(ctx context.Context, ref store.TaskRef, to domain.TaskState) (store.TaskRef, error) {
	src := s.taskPath(ref)
	dst := store.TaskRef{State: to, ID: ref.ID}

	if err := os.Rename(src, s.taskPath(dst)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store.TaskRef{}, fmt.Errorf("%w: %s", store.ErrNotFound, src)
		}
		return store.TaskRef{}, fmt.Errorf("%w: moving %s to %s: %v", store.ErrIO, src, to, err)
	}

	s.logger.Debug("moved task", "task_id", ref.ID, "from", ref.State, "to", to)
	return dst, nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, ref store.TaskRef) error {
	path := s.taskPath(ref)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, path)
		}
		return fmt.Errorf("%w: deleting %s: %v", store.ErrIO, path, err)
	}

	s.logger.Debug("deleted task", "task_id", ref.ID, "state", ref.State)
	return nil
}

func (s *TaskStore) taskPath(ref store.TaskRef) string {
	return filepath.Join(s.root, string(ref.State), ref.ID+taskExt)
}
