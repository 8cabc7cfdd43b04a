// Package logfinder locates the VRChat client's log directory and the
// log files inside it.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnvLogDir overrides log directory auto-detection when set.
const EnvLogDir = "VRCPRESENCE_LOGDIR"

// logGlob matches the file names the VRChat client writes.
const logGlob = "output_log_*.txt"

var (
	// ErrLogDirNotFound means no directory holding VRChat logs could be
	// located.
	ErrLogDirNotFound = errors.New("log directory not found")

	// ErrNoLogFiles means the directory exists but holds no log files.
	ErrNoLogFiles = errors.New("no log files found")
)

// FindLogDir locates the VRChat log directory. An explicit directory wins
// over the VRCPRESENCE_LOGDIR environment variable, which wins over the
// default install locations. The returned path has symlinks resolved.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		if dir, ok := usableLogDir(explicit); ok {
			return dir, nil
		}
		return "", fmt.Errorf("%w: %s does not exist or holds no output_log files", ErrLogDirNotFound, explicit)
	}

	if env := os.Getenv(EnvLogDir); env != "" {
		if dir, ok := usableLogDir(env); ok {
			return dir, nil
		}
		return "", fmt.Errorf("%w: %s (from %s) does not exist or holds no output_log files", ErrLogDirNotFound, env, EnvLogDir)
	}

	for _, candidate := range defaultLogDirs() {
		if dir, ok := usableLogDir(candidate); ok {
			return dir, nil
		}
	}
	return "", ErrLogDirNotFound
}

// defaultLogDirs lists the locations the Windows client writes logs to.
// On other platforms these paths never exist and detection falls through.
func defaultLogDirs() []string {
	local := os.Getenv("LOCALAPPDATA")
	if local == "" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			local = filepath.Join(profile, "AppData", "Local")
		}
	}
	if local == "" {
		return nil
	}

	low := filepath.Join(filepath.Dir(local), "LocalLow")
	return []string{
		filepath.Join(low, "VRChat", "VRChat"),
		filepath.Join(low, "VRChat", "vrchat"),
	}
}

// usableLogDir reports whether dir exists and holds at least one log
// file, returning the symlink-resolved path when it does.
func usableLogDir(dir string) (string, bool) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}

	matches, err := filepath.Glob(filepath.Join(resolved, logGlob))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return resolved, true
}

// FindLatestLogFile returns the most recently modified log file in dir.
// Returns ErrNoLogFiles when dir holds none.
func FindLatestLogFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, logGlob))
	if err != nil {
		return "", fmt.Errorf("globbing log files: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNoLogFiles
	}

	var newest string
	var newestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", ErrNoLogFiles
	}
	return newest, nil
}

// LatestLogFile resolves the log directory and returns its newest log
// file. Convenience for callers that want exactly one file.
func LatestLogFile(explicitDir string) (string, error) {
	dir, err := FindLogDir(explicitDir)
	if err != nil {
		return "", err
	}
	return FindLatestLogFile(dir)
}
