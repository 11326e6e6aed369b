package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// seedExtensions are the file types picked up when a directory is given.
var seedExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
}

// readDocuments reads text files (or directories of them) into texts with a source metadata entry each.
// Empty files are skipped.
func readDocuments(paths []string) ([]string, []map[string]any, error) {
	var texts []string
	var metadata []map[string]any

	add := func(path string) error {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil
		}
		texts = append(texts, text)
		metadata = append(metadata, map[string]any{
			"source": filepath.Base(path),
			"path":   path,
		})
		return nil
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if err := add(p); err != nil {
				return nil, nil, err
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := seedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	return texts, metadata, nil
}

// seed loads the given files into the document store.
func seed(ctx context.Context, a *app, paths []string, logger *zap.Logger) error {
	if len(paths) == 0 {
		return nil
	}
	texts, metadata, err := readDocuments(paths)
	if err != nil {
		return err
	}
	if err := a.docs.Add(ctx, texts, metadata); err != nil {
		return fmt.Errorf("load seed documents: %w", err)
	}
	logger.Info("Seed documents loaded",
		zap.Int("loaded", len(texts)),
		zap.Int("total", a.docs.Count()),
	)
	return nil
}
