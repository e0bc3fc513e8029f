// Package scan finds text files that are candidates for conversion and
// previews how many copy units each would produce.
package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klytics/copykit/internal/convert"
	"github.com/klytics/copykit/internal/segment"
)

// FileInfo represents a scanned text file.
type FileInfo struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Units      int       `json:"units"`
	Converted  bool      `json:"converted"`
	SHA256     string    `json:"sha256,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Result holds the results of a directory scan.
type Result struct {
	RootDir    string     `json:"rootDir"`
	Files      []FileInfo `json:"files"`
	TotalUnits int        `json:"totalUnits"`
	TotalSize  int64      `json:"totalSize"`
	Converted  int        `json:"converted"`
	ScannedAt  time.Time  `json:"scannedAt"`
}

// Options configures the directory scan.
type Options struct {
	Recursive  bool
	Extensions []string // filter to these extensions; empty = .txt
	MinSize    int64
	MaxSize    int64
	ModAfter   time.Time
	ModBefore  time.Time
	CountUnits bool // segment each file to count its units
	WithHash   bool // SHA-256 per file, needed for duplicate detection
}

// Scan walks a directory and finds candidate text files. A candidate is
// counted as converted when a workbook with the derived output name
// already sits next to it.
func Scan(root string, opts Options) (*Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	extFilter := map[string]bool{".txt": true}
	if len(opts.Extensions) > 0 {
		extFilter = make(map[string]bool)
		for _, e := range opts.Extensions {
			e = strings.ToLower(e)
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			extFilter[e] = true
		}
	}

	result := &Result{
		RootDir:   root,
		ScannedAt: time.Now(),
	}

	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible
		}
		if d.IsDir() {
			if !opts.Recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if !extFilter[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		finfo, err := d.Info()
		if err != nil {
			return nil
		}

		if opts.MinSize > 0 && finfo.Size() < opts.MinSize {
			return nil
		}
		if opts.MaxSize > 0 && finfo.Size() > opts.MaxSize {
			return nil
		}
		if !opts.ModAfter.IsZero() && finfo.ModTime().Before(opts.ModAfter) {
			return nil
		}
		if !opts.ModBefore.IsZero() && finfo.ModTime().After(opts.ModBefore) {
			return nil
		}

		fi := FileInfo{
			Path:       path,
			Name:       d.Name(),
			Size:       finfo.Size(),
			ModifiedAt: finfo.ModTime(),
		}

		if opts.CountUnits {
			if units, err := countUnits(path); err != nil {
				fi.Error = err.Error()
			} else {
				fi.Units = units
				result.TotalUnits += units
			}
		}

		if _, err := os.Stat(convert.DerivedOutput(path, "")); err == nil {
			fi.Converted = true
			result.Converted++
		}

		if opts.WithHash {
			if hash, err := hashFile(path); err == nil {
				fi.SHA256 = hash
			}
		}

		result.Files = append(result.Files, fi)
		result.TotalSize += finfo.Size()

		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	// Sort by path for deterministic output
	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})

	return result, nil
}

func countUnits(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	text, err := segment.Decode(data)
	if err != nil {
		return 0, err
	}
	return len(segment.Split(text)), nil
}

// hashFile computes SHA-256 of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
