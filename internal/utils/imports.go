package utils

import (
	"path"
	"regexp"
	"strings"
)

var majorVersionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// GuessPackageName returns the conventional package name for an import path:
// the last element, skipping a /vN major version element, with a ".vN"
// suffix and a "go-" prefix removed and dashes dropped.
func GuessPackageName(importPath string) string {
	elems := strings.Split(strings.Trim(importPath, "/"), "/")
	name := elems[len(elems)-1]
	if majorVersionSuffix.MatchString(name) && len(elems) > 1 {
		name = elems[len(elems)-2]
	}

	if i := strings.LastIndex(name, ".v"); i > 0 && majorVersionSuffix.MatchString(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, ".", "")

	if name == "" {
		return path.Base(importPath)
	}
	return name
}
