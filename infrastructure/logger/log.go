package logger

import (
	"fmt"
	"sync"
)

// logEntry is a single already-formatted log line destined for every
// writer attached to a Backend.
type logEntry struct {
	level Level
	log   []byte
}

// Logger writes tagged, level-filtered log lines to a Backend.
type Logger struct {
	level     Level
	subsystem string
	b         *Backend
	writeChan chan logEntry
}

// SetLevel changes the level at or above which this logger's messages are
// written.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Level returns this logger's current level.
func (l *Logger) Level() Level {
	return l.level
}

// Backend returns the Backend this logger writes to.
func (l *Logger) Backend() *Backend {
	return l.b
}

func (l *Logger) write(level Level, format string, args []interface{}) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %s %s\n", l.subsystem, level, msg)
	select {
	case l.writeChan <- logEntry{level: level, log: []byte(line)}:
	default:
		// The backend isn't running yet (or its channel is unbuffered and
		// nobody is draining it); dropping rather than blocking the
		// caller keeps logging best-effort.
	}
}

// Tracef logs at LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) { l.write(LevelTrace, format, args) }

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) { l.write(LevelDebug, format, args) }

// Infof logs at LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) { l.write(LevelInfo, format, args) }

// Warnf logs at LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) { l.write(LevelWarn, format, args) }

// Errorf logs at LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) { l.write(LevelError, format, args) }

// Criticalf logs at LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) { l.write(LevelCritical, format, args) }

var (
	subsystemsMu sync.Mutex
	backend      = NewBackend()
	subsystems   = make(map[string]*Logger)
)

// RegisterSubSystem returns this process's Logger for the given subsystem
// tag, creating it (against the package's shared Backend) the first time
// it's asked for. Call sites follow the usual
//
//	var log = logger.RegisterSubSystem("SYNC")
//
// pattern at package scope.
func RegisterSubSystem(tag string) *Logger {
	subsystemsMu.Lock()
	defer subsystemsMu.Unlock()

	if l, ok := subsystems[tag]; ok {
		return l
	}
	l := backend.Logger(tag)
	l.SetLevel(LevelInfo)
	subsystems[tag] = l
	return l
}

// SharedBackend returns the shared Backend every RegisterSubSystem logger
// writes to, so a caller can attach writers and Run it.
func SharedBackend() *Backend {
	return backend
}

// SetLogLevels sets level on every subsystem logger registered so far.
func SetLogLevels(level Level) {
	subsystemsMu.Lock()
	defer subsystemsMu.Unlock()
	for _, l := range subsystems {
		l.SetLevel(level)
	}
}
