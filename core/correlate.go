package core

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/huangsam/covpost/schema"
)

// ErrNoChangedFiles is returned when none of the changed files maps onto a source root.
var ErrNoChangedFiles = errors.New("no changed files under a recognized source root")

// splitCanonicalPath splits "com/x/Foo.java" into ("com/x", "Foo.java").
func splitCanonicalPath(path string) (dir, leaf string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// classMatches reports whether a class entry belongs to the changed file at dir/leaf.
// Class names are compared in slash form so that "com.x.Foo" and "com/x/Foo" are equivalent.
func classMatches(class schema.ClassEntry, dir, leaf string) bool {
	if class.SourceFileName != leaf {
		return false
	}
	name := strings.ReplaceAll(class.Name, ".", "/")
	if dir == "" {
		return !strings.Contains(name, "/")
	}
	return strings.HasPrefix(name, dir+"/")
}

// Correlate aggregates the class counters of every changed file that appears in the report.
// Files without a matching class are absent from the result, which is sorted by path.
func Correlate(report *schema.Report, canonicalPaths []string) []schema.FileCoverage {
	type split struct{ dir, leaf string }
	splits := make(map[string]split, len(canonicalPaths))
	for _, p := range canonicalPaths {
		dir, leaf := splitCanonicalPath(p)
		splits[p] = split{dir, leaf}
	}

	buckets := make(map[string]map[schema.CounterType]schema.CounterCoverage)
	for _, pkg := range report.Packages {
		for _, class := range pkg.Classes {
			for path, s := range splits {
				if !classMatches(class, s.dir, s.leaf) {
					continue
				}
				bucket, ok := buckets[path]
				if !ok {
					bucket = make(map[schema.CounterType]schema.CounterCoverage, len(schema.ChangedFileCounterTypes))
					for _, t := range schema.ChangedFileCounterTypes {
						bucket[t] = schema.CounterCoverage{}
					}
					buckets[path] = bucket
				}
				for _, c := range class.Counters {
					acc, tracked := bucket[c.Type]
					if !tracked {
						continue
					}
					acc.Covered += c.Covered
					acc.Missed += c.Missed
					bucket[c.Type] = acc
				}
			}
		}
	}

	files := make([]schema.FileCoverage, 0, len(buckets))
	for path, bucket := range buckets {
		for t, acc := range bucket {
			acc.Coverage = schema.CoveragePercent(acc.Covered, acc.Missed)
			bucket[t] = acc
		}
		files = append(files, schema.FileCoverage{Path: path, Counters: bucket})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}

// BuildChangedFilesCoverage resolves the files changed by the pull request at threadURL
// and correlates them with the report. An error means the changed-file section should be
// omitted; callers log it and continue with the total table.
func BuildChangedFilesCoverage(ctx context.Context, report *schema.Report, lister FileLister, threadURL string) ([]schema.FileCoverage, error) {
	changed := ResolveChangedFiles(ctx, lister, threadURL)
	return CorrelateChangedFiles(report, changed)
}

// CorrelateChangedFiles aggregates coverage for the recognized files among changed.
// ErrNoChangedFiles is returned when files were changed but none maps onto a source root.
func CorrelateChangedFiles(report *schema.Report, changed []schema.ChangedFile) ([]schema.FileCoverage, error) {
	if report == nil {
		return nil, errors.New("coverage report is not loaded")
	}
	paths := DistinctCanonicalPaths(changed)
	if len(paths) == 0 {
		if len(changed) == 0 {
			return nil, nil
		}
		return nil, ErrNoChangedFiles
	}
	return Correlate(report, paths), nil
}
