// Package host provides file-backed implementations of the collaborators a
// recents panel consumes: the task registry, component resolution, the
// foreground detection, media info and synthetic icon and thumbnail images.
//
// Everything is driven by one YAML file, so the panel can be exercised from
// a terminal without a real window system.
package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/logging"
	"github.com/Iron-Ham/recents/internal/task"
)

// File is the on-disk layout of the registry.
type File struct {
	// Tasks are listed most recent first.
	Tasks []TaskEntry `yaml:"tasks"`
	// Apps maps a component ("pkg/.Activity") or a bare package name to its
	// launcher metadata. Tasks of packages missing here do not resolve.
	Apps  map[string]AppEntry `yaml:"apps,omitempty"`
	Media *MediaEntry         `yaml:"media,omitempty"`
}

// TaskEntry is one recent task.
type TaskEntry struct {
	ID           int    `yaml:"id"`
	PersistentID int    `yaml:"persistent_id"`
	Component    string `yaml:"component,omitempty"`
	Package      string `yaml:"package"`
	Label        string `yaml:"label,omitempty"`
	Description  string `yaml:"description,omitempty"`
	Color        string `yaml:"color,omitempty"`
	Foreground   bool   `yaml:"foreground,omitempty"`
	// Secure tasks never expose a thumbnail.
	Secure bool `yaml:"secure,omitempty"`
}

// AppEntry is launcher metadata for a component or package.
type AppEntry struct {
	Label string `yaml:"label,omitempty"`
	Icon  string `yaml:"icon,omitempty"`
	Color string `yaml:"color,omitempty"`
}

// MediaEntry describes the track currently playing.
type MediaEntry struct {
	Package  string        `yaml:"package"`
	Artist   string        `yaml:"artist,omitempty"`
	Title    string        `yaml:"title,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
	Color    string        `yaml:"color,omitempty"`
}

// Record converts the entry to a task record. Invalid colors are dropped.
func (e TaskEntry) Record() task.Record {
	color, err := task.ParseColor(e.Color)
	if err != nil {
		color = task.NoColor
	}
	return task.Record{
		TaskID:       e.ID,
		PersistentID: e.PersistentID,
		Component:    e.Component,
		Package:      e.Package,
		Description:  e.Description,
		Label:        e.Label,
		PrimaryColor: color,
	}
}

// Registry reads and rewrites the registry file. Every RecentTasks call
// rereads the file; the other accessors answer from that last read.
type Registry struct {
	path   string
	logger *logging.Logger

	mu   sync.RWMutex
	file File
}

// NewRegistry creates a Registry for path. The file is not read until the
// first RecentTasks or Reload call.
func NewRegistry(path string, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Registry{
		path:   path,
		logger: logger.WithComponent("registry"),
	}
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.path
}

// Reload rereads the file.
func (r *Registry) Reload() error {
	f, err := ReadFile(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.file = *f
	r.mu.Unlock()
	r.logger.Debug("registry loaded", "path", r.path, "tasks", len(f.Tasks), "apps", len(f.Apps))
	return nil
}

// RecentTasks rereads the file and returns its tasks, most recent first.
func (r *Registry) RecentTasks(ctx context.Context) ([]task.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]task.Record, len(r.file.Tasks))
	for i, e := range r.file.Tasks {
		out[i] = e.Record()
	}
	return out, nil
}

// RemoveTask deletes the task with persistentID and writes the file back.
func (r *Registry) RemoveTask(ctx context.Context, persistentID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := ReadFile(r.path)
	if err != nil {
		return err
	}
	n := len(f.Tasks)
	f.Tasks = slices.DeleteFunc(f.Tasks, func(e TaskEntry) bool {
		return e.PersistentID == persistentID
	})
	if len(f.Tasks) == n {
		return errors.NewRegistryError("no such task", errors.ErrTaskNotFound).
			WithPath(r.path).
			WithTask(persistentID).
			WithRecoverable(true)
	}
	if err := WriteFile(r.path, f); err != nil {
		return err
	}
	r.file = *f
	r.logger.Info("task removed from registry", "persistent_id", persistentID)
	return nil
}

// App returns the launcher metadata of a component, falling back to its
// package entry.
func (r *Registry) App(component, pkg string) (AppEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if component != "" {
		if app, ok := r.file.Apps[component]; ok {
			return app, true
		}
	}
	app, ok := r.file.Apps[pkg]
	return app, ok
}

// Task returns the entry with persistentID from the last read.
func (r *Registry) Task(persistentID int) (TaskEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.file.Tasks {
		if e.PersistentID == persistentID {
			return e, true
		}
	}
	return TaskEntry{}, false
}

// Media returns the media block of the last read.
func (r *Registry) Media() (MediaEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.file.Media == nil {
		return MediaEntry{}, false
	}
	return *r.file.Media, true
}

// ReadFile parses a registry file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewRegistryError("read registry", err).WithPath(path)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewRegistryError("parse registry", fmt.Errorf("%w: %v", errors.ErrRegistryCorrupted, err)).WithPath(path)
	}
	return &f, nil
}

// WriteFile writes f to path through a temporary file, so readers never see
// a partial registry.
func WriteFile(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return errors.NewRegistryError("encode registry", err).WithPath(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewRegistryError("create registry directory", err).WithPath(path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.NewRegistryError("write registry", err).WithPath(path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.NewRegistryError("replace registry", err).WithPath(path)
	}
	return nil
}

// Sample returns a small registry used by "config init".
func Sample() *File {
	return &File{
		Tasks: []TaskEntry{
			{ID: 1, PersistentID: 101, Component: "org.example.mail/.Inbox", Package: "org.example.mail", Foreground: true},
			{ID: 2, PersistentID: 102, Component: "org.example.music/.Player", Package: "org.example.music"},
			{ID: 3, PersistentID: 103, Component: "org.example.browser/.Main", Package: "org.example.browser", Label: "Docs - Browser"},
			{ID: 4, PersistentID: 104, Package: "org.example.notes", Color: "#F4B400"},
			{ID: 5, PersistentID: 105, Component: "org.example.bank/.Login", Package: "org.example.bank", Secure: true},
			{ID: 6, PersistentID: 106, Package: "org.example.uninstalled"},
			{ID: 7, PersistentID: 107, Component: "org.example.maps/.Map", Package: "org.example.maps"},
		},
		Apps: map[string]AppEntry{
			"org.example.mail/.Inbox":   {Label: "Mail", Icon: "M", Color: "#4285F4"},
			"org.example.music/.Player": {Label: "Music", Icon: "♪"},
			"org.example.browser/.Main": {Label: "Browser", Icon: "B", Color: "#0F9D58"},
			"org.example.notes":         {Label: "Notes", Icon: "N"},
			"org.example.bank/.Login":   {Label: "Bank", Icon: "$", Color: "#DB4437"},
			"org.example.maps/.Map":     {Label: "Maps", Icon: "⌖"},
		},
		Media: &MediaEntry{
			Package:  "org.example.music",
			Artist:   "The Examples",
			Title:    "Placeholder",
			Duration: 187 * time.Second,
			Color:    "#AB47BC",
		},
	}
}
