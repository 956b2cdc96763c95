// Package emulator locates a Switch emulator installation and reads the bits
// of its state the mod matcher needs: the mod load directory, the installed
// title ids and their update versions.
package emulator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// ErrNotFound is returned when an expected local directory or file is missing.
var ErrNotFound = errors.New("not found")

// configFileName is the emulator's Qt frontend settings file.
const configFileName = "qt-config.ini"

// Dirs holds the per-emulator cache, config and data roots.
type Dirs struct {
	Cache  string
	Config string
	Data   string
}

// DirsFor returns the platform directories of emu. On macOS the emulators
// use XDG-style paths under the home directory rather than ~/Library.
func DirsFor(emu string) (Dirs, error) {
	if runtime.GOOS == "darwin" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Dirs{}, err
		}
		return Dirs{
			Cache:  filepath.Join(home, ".cache", emu),
			Config: filepath.Join(home, ".config", emu),
			Data:   filepath.Join(home, ".local", "share", emu),
		}, nil
	}

	cache, err := os.UserCacheDir()
	if err != nil {
		return Dirs{}, err
	}
	config, err := os.UserConfigDir()
	if err != nil {
		return Dirs{}, err
	}
	data, err := userDataDir()
	if err != nil {
		return Dirs{}, err
	}
	return Dirs{
		Cache:  filepath.Join(cache, emu),
		Config: filepath.Join(config, emu),
		Data:   filepath.Join(data, emu),
	}, nil
}

func userDataDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Roaming AppData, same root as the config dir.
		return os.UserConfigDir()
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// portableDirs detects a portable install: a "user" folder next to the
// executable that already holds config/qt-config.ini.
func portableDirs(exeDir string) (Dirs, bool) {
	userDir := filepath.Join(exeDir, "user")
	if _, err := os.Stat(filepath.Join(userDir, "config", configFileName)); err != nil {
		return Dirs{}, false
	}
	return Dirs{
		Cache:  filepath.Join(userDir, "cache"),
		Config: filepath.Join(userDir, "config"),
		Data:   userDir,
	}, true
}

// Environment is a resolved emulator installation.
type Environment struct {
	Name     string
	Dirs     Dirs
	Portable bool

	log *zap.SugaredLogger
}

// New wraps already known directories.
func New(name string, dirs Dirs, log *zap.SugaredLogger) *Environment {
	return &Environment{Name: name, Dirs: dirs, log: log.With(zap.String("emulator", name))}
}

// Resolve prefers a portable install next to the running executable and
// otherwise uses the platform directories of emu, which must exist.
func Resolve(emu string, log *zap.SugaredLogger) (*Environment, error) {
	if exe, err := os.Executable(); err == nil {
		if dirs, ok := portableDirs(filepath.Dir(exe)); ok {
			env := New(emu, dirs, log)
			env.Portable = true
			env.log.Infow("Using portable installation", zap.String("data", dirs.Data))
			return env, nil
		}
	}

	dirs, err := DirsFor(emu)
	if err != nil {
		return nil, fmt.Errorf("resolve %s directories: %w", emu, err)
	}
	if err := checkInstalled(emu, dirs); err != nil {
		return nil, err
	}
	return New(emu, dirs, log), nil
}

func checkInstalled(emu string, dirs Dirs) error {
	_, dataErr := os.Stat(dirs.Data)
	_, configErr := os.Stat(dirs.Config)
	if dataErr == nil && configErr == nil {
		return nil
	}
	return fmt.Errorf("%s is not installed, expected directories:\n  Data: %s\n  Config: %s\n%w",
		emu, dirs.Data, dirs.Config, ErrNotFound)
}
