package core

import (
	"context"
	"strings"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/schema"
)

// FileLister is the part of the review client needed to list pull request files.
type FileLister interface {
	ListPullRequestFiles(ctx context.Context, threadURL string) ([]string, error)
}

// ClassifyPath maps a repository-relative path onto a source root.
// The first root in schema.SourceRoots whose extension and marker both match wins;
// the marker must cover whole path segments. The canonical path is everything after
// the marker and the separator that follows it.
func ClassifyPath(path string) schema.ChangedFile {
	file := schema.ChangedFile{OriginalPath: path}
	for _, root := range schema.SourceRoots {
		if !strings.HasSuffix(path, root.Extension) {
			continue
		}
		start := markerEnd(path, root.Marker)
		if start < 0 || start >= len(path) {
			continue
		}
		file.Language = root.Language
		file.CanonicalPath = path[start:]
		return file
	}
	return file
}

// markerEnd returns the offset just past the first occurrence of marker that spans
// whole path segments and is followed by a separator, or -1.
func markerEnd(path, marker string) int {
	for offset := 0; offset < len(path); {
		idx := strings.Index(path[offset:], marker)
		if idx < 0 {
			return -1
		}
		idx += offset
		end := idx + len(marker)
		if (idx == 0 || path[idx-1] == '/') && end < len(path) && path[end] == '/' {
			return end + 1
		}
		offset = idx + 1
	}
	return -1
}

// ClassifyPaths classifies every path, preserving input order.
func ClassifyPaths(paths []string) []schema.ChangedFile {
	files := make([]schema.ChangedFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, ClassifyPath(p))
	}
	return files
}

// ResolveChangedFiles lists the files changed by the pull request at threadURL and classifies them.
// Listing failures are logged and yield an empty list.
func ResolveChangedFiles(ctx context.Context, lister FileLister, threadURL string) []schema.ChangedFile {
	paths, err := lister.ListPullRequestFiles(ctx, threadURL)
	if err != nil {
		contract.LogWarn("Failed to list pull request files", err)
		return []schema.ChangedFile{}
	}
	for _, p := range paths {
		contract.Logger.Debug().Str("path", p).Msg("changed file")
	}
	return ClassifyPaths(paths)
}

// LocalChangedFiles lists the files changed between baseRef and targetRef in a local repository.
func LocalChangedFiles(ctx context.Context, client contract.GitClient, repoPath, baseRef, targetRef string) ([]schema.ChangedFile, error) {
	paths, err := client.ListChangedFiles(ctx, repoPath, baseRef, targetRef)
	if err != nil {
		return nil, err
	}
	return ClassifyPaths(paths), nil
}

// DistinctCanonicalPaths returns the canonical paths of recognized files without duplicates,
// in first-seen order.
func DistinctCanonicalPaths(files []schema.ChangedFile) []string {
	seen := make(map[string]struct{}, len(files))
	var paths []string
	for _, f := range files {
		if !f.Recognized() {
			continue
		}
		if _, ok := seen[f.CanonicalPath]; ok {
			continue
		}
		seen[f.CanonicalPath] = struct{}{}
		paths = append(paths, f.CanonicalPath)
	}
	return paths
}
