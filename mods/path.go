package mods

import "strings"

var (
	// modSubDirs are the directory names that hold actual mod content.
	modSubDirs = []string{"exefs", "romfs", "cheats"}

	titleIDBrackets = strings.NewReplacer("[", "", "]", "")
)

// ParsePath splits a listing path into its five components. The last
// component keeps any further slashes. Paths with fewer than five segments
// are rejected.
func ParsePath(path string) (ModPathInfo, bool) {
	parts := strings.SplitN(path, "/", 5)
	if len(parts) < 5 {
		return ModPathInfo{}, false
	}

	return ModPathInfo{
		TitleName:    parts[1],
		TitleID:      titleIDBrackets.Replace(parts[2]),
		TitleVersion: parts[3],
		RelativePath: parts[4],
	}, true
}

// isModContent reports whether path passes through an exefs, romfs or cheats directory.
func isModContent(path string) bool {
	for _, dir := range modSubDirs {
		if strings.Contains(path, "/"+dir+"/") {
			return true
		}
	}
	return false
}
