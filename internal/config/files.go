package config

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExtensions are the file extensions treated as Verilog sources
var sourceExtensions = map[string]bool{
	".v":  true,
	".sv": true,
}

// IsSourceFile reports whether path has a Verilog source extension
func IsSourceFile(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// ResolveSources expands the source patterns under rootPath, removes the
// excluded files and returns a sorted, de-duplicated list
func (c *Config) ResolveSources(rootPath string) ([]string, error) {
	fileSet := make(map[string]bool)
	for _, pattern := range c.Sources.Files {
		// Make pattern absolute if relative
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			// Silently skip invalid patterns
			continue
		}

		for _, match := range matches {
			if IsSourceFile(match) {
				fileSet[filepath.Clean(match)] = true
			}
		}
	}

	// Remove excluded files
	for _, pattern := range c.Sources.Exclude {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			continue
		}

		for _, match := range matches {
			delete(fileSet, filepath.Clean(match))
		}
	}

	// Bare patterns such as "*_stub.v" also match base names in any directory
	result := make([]string, 0, len(fileSet))
	for f := range fileSet {
		rel, err := filepath.Rel(rootPath, f)
		if err != nil {
			rel = f
		}
		if c.ShouldIgnoreFile(filepath.ToSlash(rel)) {
			continue
		}
		result = append(result, f)
	}
	sort.Strings(result)

	return result, nil
}

// expandGlob expands a glob pattern, handling ** for recursive matching
func expandGlob(pattern string) ([]string, error) {
	// Check if pattern contains **
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}

	// Simple glob
	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles ** patterns by walking the directory tree.
// Hidden directories below the base are not entered.
func expandDoubleStarGlob(pattern string) ([]string, error) {
	var results []string

	// Split pattern at **
	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}

		if d.IsDir() {
			if path != baseDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if suffix == "" {
			results = append(results, path)
			return nil
		}

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}

		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}

		return nil
	})

	return results, err
}

// matchSuffix checks if a path matches a suffix pattern (after **)
func matchSuffix(path, pattern string) bool {
	// Handle patterns like "/*.v" or "*.v"
	pattern = strings.TrimPrefix(pattern, string(filepath.Separator))

	// If pattern has no directory component, match against filename
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	// For patterns with directory components, try matching
	matched, _ := filepath.Match(pattern, path)
	if matched {
		return true
	}

	// Also try matching just the suffix
	if len(path) > len(pattern) {
		suffix := path[len(path)-len(pattern):]
		matched, _ = filepath.Match(pattern, suffix)
		return matched
	}

	return false
}
