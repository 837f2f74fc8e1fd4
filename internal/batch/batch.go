// Package batch runs a conversion over a single file or every matching file
// of a directory, one file at a time.
package batch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/aimtools/internal/logger"
)

// ErrUnsupportedPath is returned for a path that is neither a regular file nor a directory.
var ErrUnsupportedPath = errors.New("path is neither a file nor a directory")

// Result holds the outcome of processing one file.
type Result struct {
	Path    string
	Success bool
	Err     error
}

// Files resolves path to the files to process. A regular file is returned as
// is; a directory yields its entries whose extension matches ext, ignoring
// case, in name order. Subdirectories are not entered.
func Files(path, ext string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	switch {
	case info.Mode().IsRegular():
		return []string{path}, nil
	case info.IsDir():
	default:
		return nil, errors.Wrapf(ErrUnsupportedPath, "%s", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %s", path)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}

// Run calls fn for each file in order. A failing file is logged and recorded,
// and processing continues with the next one.
func Run(files []string, fn func(path string) error) []Result {
	results := make([]Result, 0, len(files))
	for i, f := range files {
		logger.Debug("processing", zap.String("file", f), zap.Int("index", i+1), zap.Int("total", len(files)))

		if err := fn(f); err != nil {
			logger.Error("processing failed", zap.String("file", f), zap.Error(err))
			results = append(results, Result{Path: f, Err: err})
			continue
		}
		results = append(results, Result{Path: f, Success: true})
	}
	return results
}

// Failed returns the results that did not succeed.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}
