// Package scan walks a strategy/date artifact tree and classifies each date folder.
//
// The layout is fixed:
//
//	<root>/<strategy>/<date>/output/<resultFile>
//	<root>/<strategy>/<date>/forward/*.png
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/drew/stratsite/internal/config"
)

// DateDir is one candidate date folder that has at least one artifact
type DateDir struct {
	Name      string
	HasOutput bool
	Images    []string
}

// StrategyDir is a configured strategy whose directory exists in the tree
type StrategyDir struct {
	Key   string
	Dates []DateDir
}

// Scanner discovers strategy and date folders
type Scanner struct {
	cfg      config.ScanConfig
	reserved map[string]bool
	log      *zap.Logger
}

// New creates a scanner for the given scan settings
func New(cfg config.ScanConfig, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	reserved := make(map[string]bool)
	for _, name := range config.ReservedDirNames() {
		reserved[name] = true
	}
	return &Scanner{cfg: cfg, reserved: reserved, log: log}
}

// Scan reads fsys, which must be rooted at the site root. Strategies are returned in
// configuration order; date folders in lexical order (callers sort for display).
func (s *Scanner) Scan(ctx context.Context, fsys fs.FS) ([]StrategyDir, error) {
	var dirs []StrategyDir

	for _, key := range s.cfg.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := fs.Stat(fsys, key)
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("strategy directory not found", zap.String("strategy", key))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat strategy %s: %w", key, err)
		}
		if !info.IsDir() {
			s.log.Debug("strategy path is not a directory", zap.String("strategy", key))
			continue
		}

		dates, err := s.scanStrategy(fsys, key)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, StrategyDir{Key: key, Dates: dates})
	}

	return dirs, nil
}

func (s *Scanner) scanStrategy(fsys fs.FS, key string) ([]DateDir, error) {
	entries, err := fs.ReadDir(fsys, key)
	if err != nil {
		return nil, fmt.Errorf("read strategy %s: %w", key, err)
	}

	dates := []DateDir{}
	for _, entry := range entries {
		if s.reserved[entry.Name()] {
			continue
		}
		datePath := path.Join(key, entry.Name())
		isDir, err := isDirEntry(fsys, datePath, entry)
		if err != nil {
			return nil, err
		}
		if !isDir {
			continue
		}

		hasOutput, err := s.hasOutput(fsys, datePath)
		if err != nil {
			return nil, err
		}
		images, err := s.images(fsys, datePath)
		if err != nil {
			return nil, err
		}

		if !hasOutput && len(images) == 0 {
			s.log.Debug("date folder has no artifacts",
				zap.String("strategy", key),
				zap.String("date", entry.Name()),
			)
			continue
		}

		dates = append(dates, DateDir{
			Name:      entry.Name(),
			HasOutput: hasOutput,
			Images:    images,
		})
	}

	return dates, nil
}

// isDirEntry reports whether entry is a directory, following symlinks
func isDirEntry(fsys fs.FS, name string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := fs.Stat(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		// dangling link
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return info.IsDir(), nil
}

func (s *Scanner) hasOutput(fsys fs.FS, datePath string) (bool, error) {
	info, err := fs.Stat(fsys, path.Join(datePath, config.OutputDirName, s.cfg.ResultFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat result file in %s: %w", datePath, err)
	}
	return info.Mode().IsRegular(), nil
}

// images lists files directly inside <date>/forward that match the image pattern
func (s *Scanner) images(fsys fs.FS, datePath string) ([]string, error) {
	forwardPath := path.Join(datePath, config.ForwardDirName)
	info, err := fs.Stat(fsys, forwardPath)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat forward folder in %s: %w", datePath, err)
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	forward, err := fs.Sub(fsys, forwardPath)
	if err != nil {
		return nil, fmt.Errorf("open forward folder in %s: %w", datePath, err)
	}
	matches, err := doublestar.Glob(forward, s.cfg.ImagePattern)
	if err != nil {
		return nil, fmt.Errorf("glob images in %s: %w", forwardPath, err)
	}

	images := []string{}
	for _, name := range matches {
		// Only direct children count, even if the pattern could recurse
		if path.Dir(name) != "." {
			continue
		}
		fi, err := fs.Stat(forward, name)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		images = append(images, name)
	}
	sort.Strings(images)

	return images, nil
}
