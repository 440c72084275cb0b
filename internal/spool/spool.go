// Package spool manages the directory where uploads and results are staged
// while a request is being served.
package spool

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
	"time"
)

const (
	DefaultMaxAge  = 30 * time.Minute
	DefaultMaxSize = 50 << 20
)

type Dir struct {
	path    string
	maxAge  time.Duration
	maxSize int64
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Dir)

// WithMaxAge removes files older than age on every sweep.
func WithMaxAge(age time.Duration) Option {
	return func(d *Dir) { d.maxAge = age }
}

// WithMaxSize removes the oldest files once the directory holds more than size bytes.
func WithMaxSize(size int64) Option {
	return func(d *Dir) { d.maxSize = size }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dir) { d.logger = logger }
}

// Open creates the directory if needed and removes every file left in it.
func Open(path string, opts ...Option) (*Dir, error) {
	d := &Dir{
		maxAge:  DefaultMaxAge,
		maxSize: DefaultMaxSize,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid spool path %q: %w", path, err)
	}
	d.path = abs
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create spool directory %q: %w", d.path, err)
	}
	files, err := d.files()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		d.Remove(f.path)
	}
	return d, nil
}

func (d *Dir) Path() string {
	return d.path
}

// Create opens a new file in the directory. The file name starts with prefix
// and ends with a sanitized form of name.
func (d *Dir) Create(prefix, name string) (*os.File, error) {
	pattern := fmt.Sprintf("%s_*_%s", prefix, SafeName(name))
	f, err := os.CreateTemp(d.path, pattern)
	if err != nil {
		return nil, fmt.Errorf("could not create spool file: %w", err)
	}
	return f, nil
}

// Remove deletes a spooled file. Missing files are ignored.
func (d *Dir) Remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		d.logger.Error("could not remove spool file", "file", path, "error", err)
	}
}

// Sweep removes files older than the maximum age, then the oldest files for as
// long as the directory exceeds its maximum size. It returns how many files were removed.
func (d *Dir) Sweep() (int, error) {
	files, err := d.files()
	if err != nil {
		return 0, err
	}
	// newest first, so the size limit evicts the oldest
	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })

	now := d.now()
	var total int64
	removed := 0
	for _, f := range files {
		total += f.size
		if (d.maxAge > 0 && now.Sub(f.mod) > d.maxAge) || (d.maxSize > 0 && total > d.maxSize) {
			d.Remove(f.path)
			removed++
		}
	}
	return removed, nil
}

// Stats returns the number of files and bytes currently spooled.
func (d *Dir) Stats() (files int, size int64, err error) {
	list, err := d.files()
	if err != nil {
		return 0, 0, err
	}
	for _, f := range list {
		size += f.size
	}
	return len(list), size, nil
}

// Run sweeps the directory every interval until ctx is done.
func (d *Dir) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := d.Sweep()
			if err != nil {
				d.logger.Error("spool sweep failed", "dir", d.path, "error", err)
				continue
			}
			if removed > 0 {
				d.logger.Info("spool sweep", "dir", d.path, "removed", removed)
			}
		}
	}
}

type entry struct {
	path string
	size int64
	mod  time.Time
}

func (d *Dir) files() ([]entry, error) {
	list, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("unable to read spool directory %q: %w", d.path, err)
	}
	files := make([]entry, 0, len(list))
	for _, de := range list {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue // removed meanwhile
		}
		files = append(files, entry{
			path: filepath.Join(d.path, de.Name()),
			size: info.Size(),
			mod:  info.ModTime(),
		})
	}
	return files, nil
}

// SafeName reduces name to a plain file name made of ASCII letters, digits,
// dots, dashes and underscores.
func SafeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	s := strings.TrimLeft(b.String(), "._")
	if s == "" {
		return "upload"
	}
	return s
}
