package emulator

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrConfigKey is returned when qt-config.ini has no load_directory entry.
var ErrConfigKey = errors.New("configuration key not found")

const loadDirectoryKey = "load_directory="

// scanLines calls fn for each line of path until fn returns true.
func scanLines(path string, fn func(line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if fn(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// LoadDirectory returns the configured mod load directory. An empty value
// means the emulator default, <data>/nand.
func (e *Environment) LoadDirectory() (string, error) {
	configPath := filepath.Join(e.Dirs.Config, configFileName)

	var (
		value string
		found bool
	)
	err := scanLines(configPath, func(line string) bool {
		value, found = strings.CutPrefix(line, loadDirectoryKey)
		return found
	})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", configPath, err)
	}
	if !found {
		return "", fmt.Errorf("could not find %q in %s: %w", strings.TrimSuffix(loadDirectoryKey, "="), configPath, ErrConfigKey)
	}

	if value == "" {
		return filepath.Join(e.Dirs.Data, "nand"), nil
	}
	return value, nil
}

// TitleIDs lists the per-title folders of the load directory.
func (e *Environment) TitleIDs(loadDir string) ([]string, error) {
	entries, err := os.ReadDir(loadDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load directory %s: %w", loadDir, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read load directory %s: %w", loadDir, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// TitleVersion reads the installed update version from the game list cache
// (<cache>/game_list/<id>.pv.txt, line "Update (<version>)"). ok is false when
// the file is missing or lists no update.
func (e *Environment) TitleVersion(titleID string) (version string, ok bool, err error) {
	pvPath := filepath.Join(e.Dirs.Cache, "game_list", titleID+".pv.txt")
	if _, statErr := os.Stat(pvPath); errors.Is(statErr, fs.ErrNotExist) {
		return "", false, nil
	}

	err = scanLines(pvPath, func(line string) bool {
		rest, found := strings.CutPrefix(line, "Update (")
		if !found {
			return false
		}
		version, ok = strings.CutSuffix(rest, ")")
		return ok
	})
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", pvPath, err)
	}
	if !ok {
		return "", false, nil
	}
	e.log.Debugw("Found installed update", zap.String("title_id", titleID), zap.String("version", version))
	return version, true, nil
}
