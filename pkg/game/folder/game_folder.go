// Package folder works on a game directory: well-known sub folders, backups,
// logs and crash reports.
package folder

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"limeal.fr/cobalt/pkg/connectors"
	"limeal.fr/cobalt/pkg/utils"
)

// TimestampLayout names backup, log and crash report copies.
const TimestampLayout = "20060102_150405"

var (
	ErrNoLogs         = errors.New("no log files found")
	ErrNoCrashReports = errors.New("no crash reports found")
	ErrVerifyFailed   = errors.New("backup verification failed")
)

// BackupFolders are archived by Backup, in this order.
var BackupFolders = []string{"saves", "resourcepacks", "config", "shaderpacks", "schematics", "mods"}

// Shortcuts maps the folder commands onto their directory.
var Shortcuts = map[string]string{
	"mods":          "mods",
	"resourcepacks": "resourcepacks",
	"saves":         "saves",
	"configs":       "config",
	"schematics":    "schematics",
}

type GameFolder struct {
	Path string
}

func New(path string) *GameFolder {
	return &GameFolder{Path: path}
}

func (g *GameFolder) GetPath() string {
	return g.Path
}

// Sub returns the path of a folder inside the game directory.
func (g *GameFolder) Sub(name string) string {
	return filepath.Join(g.Path, name)
}

func (g *GameFolder) Exists(name string) bool {
	info, err := os.Stat(g.Sub(name))
	return err == nil && info.IsDir()
}

// Ensure creates the named folder when missing and returns its path.
func (g *GameFolder) Ensure(name string) (string, error) {
	path := g.Sub(name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	return path, nil
}

/////////////////////////////////////////////////////////////////////
// Backup
/////////////////////////////////////////////////////////////////////

type BackupResult struct {
	Name    string
	URI     string
	Folders []string
	SHA256  string
}

// BackupName is the archive name of a backup taken at now.
func BackupName(now time.Time) string {
	return "minecraft_backup_" + now.Format(TimestampLayout) + ".zip"
}

// Backup zips BackupFolders into a temporary archive, uploads it through the
// connector and checks the uploaded copy against the local sha256.
func (g *GameFolder) Backup(dest connectors.Connector, now time.Time) (*BackupResult, error) {
	tmp, err := os.CreateTemp("", "cobalt-backup-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create backup archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	folders, err := utils.ZipDirs(tmp, g.Path, BackupFolders)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write backup archive: %w", err)
	}

	sum := utils.FileSHA256(tmp.Name())
	name := BackupName(now)

	if err := dest.Connect(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", dest.GetURI(), err)
	}
	defer dest.Close()

	if err := dest.SendFile(name, tmp.Name()); err != nil {
		return nil, fmt.Errorf("upload backup: %w", err)
	}
	if !dest.HasFileWithChecksum(name, connectors.ChecksumTypeSHA256, sum) {
		return nil, fmt.Errorf("%w: %s", ErrVerifyFailed, name)
	}

	return &BackupResult{
		Name:    name,
		URI:     strings.TrimSuffix(dest.GetURI(), "/") + "/" + name,
		Folders: folders,
		SHA256:  sum,
	}, nil
}

/////////////////////////////////////////////////////////////////////
// Logs & crash reports
/////////////////////////////////////////////////////////////////////

// LatestLog returns the most recently modified .log or .txt file in logs/.
func (g *GameFolder) LatestLog() (string, error) {
	entries, err := os.ReadDir(g.Sub("logs"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoLogs
		}
		return "", err
	}

	latest := ""
	var latestMod time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".txt")) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(g.Sub("logs"), name)
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", ErrNoLogs
	}
	return latest, nil
}

// CopyLatestLog copies the latest log into destDir and returns the copy's path.
func (g *GameFolder) CopyLatestLog(destDir string, now time.Time) (string, error) {
	src, err := g.LatestLog()
	if err != nil {
		return "", err
	}
	dst := filepath.Join(destDir, "minecraft_log_"+now.Format(TimestampLayout)+".log")
	if err := utils.CopyFile(src, dst); err != nil {
		return "", fmt.Errorf("copy log: %w", err)
	}
	return dst, nil
}

// CrashReports lists the .txt files under crashes/ whose name mentions "crash".
func (g *GameFolder) CrashReports() ([]string, error) {
	root := g.Sub("crashes")
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCrashReports
	}

	var reports []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := strings.ToLower(d.Name())
		if !d.IsDir() && strings.HasSuffix(name, ".txt") && strings.Contains(name, "crash") {
			reports = append(reports, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNoCrashReports
	}
	sort.Strings(reports)
	return reports, nil
}

// CopyCrashReports copies every crash report into a new timestamped folder
// under destDir. Reports that fail to copy are skipped and returned as errors.
func (g *GameFolder) CopyCrashReports(destDir string, now time.Time) (string, int, error) {
	reports, err := g.CrashReports()
	if err != nil {
		return "", 0, err
	}

	out := filepath.Join(destDir, "minecraft_crash_reports_"+now.Format(TimestampLayout))
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", 0, fmt.Errorf("create %s: %w", out, err)
	}

	copied := 0
	var errs []error
	for _, report := range reports {
		if err := utils.CopyFile(report, filepath.Join(out, filepath.Base(report))); err != nil {
			errs = append(errs, fmt.Errorf("copy %s: %w", filepath.Base(report), err))
			continue
		}
		copied++
	}
	return out, copied, errors.Join(errs...)
}

/////////////////////////////////////////////////////////////////////
// Open
/////////////////////////////////////////////////////////////////////

// openCommand builds the file manager invocation for path.
var openCommand = func(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// Open shows path in the desktop file manager.
func Open(path string) error {
	cmd := openCommand(path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	go cmd.Wait()
	return nil
}
