package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/safedep/dry/utils"
	"github.com/safedep/tryout/packagemanager"
)

// EventType represents the type of event being logged
type EventType string

const (
	EventTypeScenarioStarted    EventType = "scenario_started"
	EventTypeDependencyResolved EventType = "dependency_resolved"
	EventTypeScenarioFinished   EventType = "scenario_finished"
	EventTypeRestoreFailed      EventType = "restore_failed"
	EventTypeRestored           EventType = "restored"
	EventTypeError              EventType = "error"

	logFileSuffix = "-tryout.log"

	defaultRetentionDays = 7
)

// Event represents one entry of the event log
type Event struct {
	Timestamp   time.Time      `json:"timestamp"`
	EventType   EventType      `json:"event_type"`
	Message     string         `json:"message"`
	RunID       string         `json:"run_id,omitempty"`
	Scenario    string         `json:"scenario,omitempty"`
	PackageName string         `json:"package_name,omitempty"`
	Version     string         `json:"version,omitempty"`
	Ecosystem   string         `json:"ecosystem,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// Logger writes events as JSON lines
type Logger struct {
	file   *os.File
	writer io.Writer
	mu     sync.Mutex
	active bool
}

var (
	globalLogger *Logger
	once         sync.Once
)

// InitializeWithDir sets up the global event logger in a log directory. Log
// files older than retentionDays are removed, a non-positive value keeps
// the default of 7 days.
func InitializeWithDir(logDir string, retentionDays int) error {
	var initErr error
	once.Do(func() {
		globalLogger = &Logger{}
		initErr = globalLogger.init(logDir, retentionDays)
	})

	return initErr
}

// InitializeWithFile sets up the global event logger with a specific file path
func InitializeWithFile(filePath string) error {
	var initErr error
	once.Do(func() {
		globalLogger = &Logger{}
		initErr = globalLogger.initWithFile(filePath)
	})

	return initErr
}

// reinitializeForTest resets and reinitializes the logger for testing purposes
func reinitializeForTest(logDir string) error {
	if globalLogger != nil {
		globalLogger.Close()
	}

	once = sync.Once{}

	return InitializeWithDir(logDir, defaultRetentionDays)
}

func logFileName(t time.Time) string {
	return t.Format("20060102") + logFileSuffix
}

// init initializes the logger with the specified directory
func (l *Logger) init(logDir string, retentionDays int) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}

	cleanupOldLogs(logDir, retentionDays)

	logFilePath := filepath.Join(logDir, logFileName(time.Now()))

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.file = file
	l.writer = file
	l.active = true

	return nil
}

// initWithFile initializes the logger with a specific file path
func (l *Logger) initWithFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.file = file
	l.writer = file
	l.active = true

	// No cleanup needed for custom log files (user manages them)

	return nil
}

// cleanupOldLogs removes log files not modified within the retention period
func cleanupOldLogs(logDir string, retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		matched, err := filepath.Match("*"+logFileSuffix, name)
		if err != nil || !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
		}
	}
}

// Log writes an event to the log file
func (l *Logger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err = l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	if l.file != nil {
		l.file.Sync()
	}

	return nil
}

// Close closes the logger
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return nil
	}

	l.active = false
	if l.file != nil {
		return l.file.Close()
	}

	return nil
}

// LogEvent logs an event using the global logger
func LogEvent(event Event) error {
	if globalLogger == nil {
		// If logger is not initialized, silently fail
		return nil
	}

	return globalLogger.Log(event)
}

// LogScenarioStarted logs the start of a scenario run
func LogScenarioStarted(runID, scenario, command string) {
	LogEvent(Event{
		EventType: EventTypeScenarioStarted,
		Message:   fmt.Sprintf("Started scenario %s with command: %s", scenario, command),
		RunID:     runID,
		Scenario:  scenario,
		Details: map[string]any{
			"command": command,
		},
	})
}

// LogDependencyResolved logs the installed version of an overridden package
func LogDependencyResolved(runID, scenario string, result packagemanager.DependencyResult) {
	seen := utils.SafelyGetValue(result.VersionSeen)

	event := Event{
		EventType:   EventTypeDependencyResolved,
		Message:     fmt.Sprintf("Package %s expected %s, found %s", result.Name, result.VersionExpected, seen),
		RunID:       runID,
		Scenario:    scenario,
		PackageName: result.Name,
		Version:     seen,
		Ecosystem:   result.Ecosystem,
		Details: map[string]any{
			"version_expected": result.VersionExpected,
			"status":           string(result.Status()),
		},
	}

	if result.IsMissing() {
		event.Message = fmt.Sprintf("Package %s expected %s, not installed", result.Name, result.VersionExpected)
	}

	if result.VersionLocked != nil {
		event.Details["version_locked"] = *result.VersionLocked
	}

	LogEvent(event)
}

// LogScenarioFinished logs the outcome of a scenario run
func LogScenarioFinished(runID, scenario string, exitCode int, duration time.Duration, interrupted bool) {
	LogEvent(Event{
		EventType: EventTypeScenarioFinished,
		Message:   fmt.Sprintf("Scenario %s finished with exit code %d", scenario, exitCode),
		RunID:     runID,
		Scenario:  scenario,
		Details: map[string]any{
			"exit_code":   exitCode,
			"duration_ms": duration.Milliseconds(),
			"interrupted": interrupted,
		},
	})
}

// LogRestoreFailed logs a failure to restore the original dependencies
func LogRestoreFailed(runID, scenario string, err error) {
	LogEvent(Event{
		EventType: EventTypeRestoreFailed,
		Message:   "Failed to restore original dependencies",
		RunID:     runID,
		Scenario:  scenario,
		Details: map[string]any{
			"error": err.Error(),
		},
	})
}

// LogRestored logs the restoration of a leftover backup
func LogRestored(ecosystem string) {
	LogEvent(Event{
		EventType: EventTypeRestored,
		Message:   fmt.Sprintf("Restored %s dependencies from a leftover backup", ecosystem),
		Ecosystem: ecosystem,
	})
}

// LogError logs an error event
func LogError(message string, err error) {
	LogEvent(Event{
		EventType: EventTypeError,
		Message:   message,
		Details: map[string]any{
			"error": err.Error(),
		},
	})
}

// Close closes the global logger
func Close() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}

	return nil
}

// IsInitialized returns whether the global logger is initialized
func IsInitialized() bool {
	if globalLogger == nil {
		return false
	}

	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	return globalLogger.active
}
