package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveShaderPath looks for a shader override called name inside dir.
// Returns "" when no override exists.
func ResolveShaderPath(dir, name string) string {
	if dir == "" || name == "" {
		return ""
	}

	searchDirs := []string{
		dir,
		filepath.Join(dir, "shaders"),
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	extensions := []string{ext, ".glsl", ".txt"}

	for _, d := range searchDirs {
		for _, e := range extensions {
			if e == "" {
				continue
			}
			p := filepath.Join(d, base+e)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}

	return ""
}

// LoadShaderOverride returns the text of the override for name, or fallback
// when there is none or it cannot be read.
func LoadShaderOverride(dir, name, fallback string) string {
	path := ResolveShaderPath(dir, name)
	if path == "" {
		return fallback
	}

	data, err := os.ReadFile(path)
	if err != nil {
		Warn("Shader: Could not read override %s: %v", path, err)
		return fallback
	}

	source := strings.Trim(string(data), "\ufeff")
	if strings.TrimSpace(source) == "" {
		Warn("Shader: Override %s is empty, using built-in source", path)
		return fallback
	}

	Info("Shader: Using override %s for %s", path, name)
	return source
}
