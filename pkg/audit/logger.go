package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/newtron-network/topobuild/pkg/util"
)

// Logger is the sink builds write their events to
type Logger interface {
	Log(event *Event) error
	Runs(filter Filter) ([]*Run, error)
	Close() error
}

// RotationConfig bounds the audit log. Rotation happens only when a new run
// starts, so the events of one build always stay in the same file.
type RotationConfig struct {
	MaxSize    int64 // bytes in the active file before the next run rotates it
	MaxBackups int   // rotated files kept as <path>.1 (newest) .. <path>.N; 0 keeps all
}

// FileLogger appends events to a JSON-lines file
type FileLogger struct {
	path     string
	rotation RotationConfig

	mu      sync.Mutex
	file    *os.File
	lastRun string
}

// NewFileLogger opens (or creates) the audit log at path
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	l := &FileLogger{path: path, rotation: rotation}
	if err := l.open(); err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = f
	return nil
}

// Log appends one event
func (l *FileLogger) Log(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return errors.New("audit log is closed")
	}
	if event.RunID != l.lastRun {
		if err := l.rotateIfFull(); err != nil {
			return fmt.Errorf("rotating audit log: %w", err)
		}
		l.lastRun = event.RunID
	}
	_, err = l.file.Write(append(data, '\n'))
	return err
}

// Runs returns the recorded builds matching filter, oldest first. Rotated
// files are read too, so a window can reach back past the last rotation.
func (l *FileLogger) Runs(filter Filter) ([]*Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var events []*Event
	for _, path := range l.files() {
		evs, err := readEvents(path)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return selectRuns(groupRuns(events), filter), nil
}

// Query returns the matching events, run by run: each run's build event
// first, then its table loads in load order.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	runs, err := l.Runs(filter)
	if err != nil {
		return nil, err
	}
	var events []*Event
	for _, r := range runs {
		events = append(events, r.Events()...)
	}
	return events, nil
}

// Close closes the log file
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *FileLogger) backup(n int) string {
	return l.path + "." + strconv.Itoa(n)
}

// files lists the log files oldest first: the highest-numbered backup down
// to the active file.
func (l *FileLogger) files() []string {
	n := 0
	for {
		if _, err := os.Stat(l.backup(n + 1)); err != nil {
			break
		}
		n++
	}
	files := make([]string, 0, n+1)
	for i := n; i > 0; i-- {
		files = append(files, l.backup(i))
	}
	return append(files, l.path)
}

func (l *FileLogger) rotateIfFull() error {
	if l.rotation.MaxSize <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil || info.Size() < l.rotation.MaxSize {
		return err
	}

	if err := l.file.Close(); err != nil {
		return err
	}
	l.file = nil
	if err := l.shiftBackups(); err != nil {
		// keep logging to the active file
		if openErr := l.open(); openErr != nil {
			return errors.Join(err, openErr)
		}
		return err
	}
	return l.open()
}

// shiftBackups renames path.N to path.N+1, dropping what falls past
// MaxBackups, and moves the active file to path.1.
func (l *FileLogger) shiftBackups() error {
	backups := len(l.files()) - 1
	for i := backups; i > 0; i-- {
		if l.rotation.MaxBackups > 0 && i >= l.rotation.MaxBackups {
			if err := os.Remove(l.backup(i)); err != nil {
				return err
			}
			continue
		}
		if err := os.Rename(l.backup(i), l.backup(i+1)); err != nil {
			return err
		}
	}
	return os.Rename(l.path, l.backup(1))
}

func readEvents(path string) ([]*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []*Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			util.WithField("file", path).Warnf("audit: skipping malformed entry at line %d: %v", line, err)
			continue
		}
		events = append(events, &e)
	}
	return events, scanner.Err()
}
