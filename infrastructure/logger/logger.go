package logger

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// backendLog is the logging backend used to create all subsystem loggers.
var backendLog = NewBackend()

var (
	subsystemsMutex sync.Mutex
	subsystems      = make(map[string]*Logger)
)

// logEntry is a single entry waiting to be written by the backend.
type logEntry struct {
	log   []byte
	level Level
}

// Logger is a subsystem logger. All messages are tagged with the subsystem
// tag and dispatched through the shared backend.
type Logger struct {
	lvl       Level
	tag       string
	b         *Backend
	writeChan chan<- logEntry
}

// RegisterSubSystem returns the logger for the given subsystem tag, creating
// and registering it if it doesn't exist yet.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()
	logger, ok := subsystems[subsystem]
	if !ok {
		logger = backendLog.Logger(subsystem)
		subsystems[subsystem] = logger
	}
	return logger
}

// InitLog attaches log file and error log file to the backend log and
// launches it. It's safe to use the loggers before InitLog is called, but
// nothing will be written anywhere.
func InitLog(logFile, errLogFile string) error {
	err := backendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		return fmt.Errorf("error adding log file %s as log rotator for level %s: %s", logFile, LevelTrace, err)
	}
	err = backendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		return fmt.Errorf("error adding log file %s as log rotator for level %s: %s", errLogFile, LevelWarn, err)
	}
	err = backendLog.AddLogWriter(os.Stdout, LevelInfo)
	if err != nil {
		return fmt.Errorf("error adding stdout to the loggerfor level %s: %s", LevelInfo, err)
	}
	err = backendLog.Run()
	if err != nil {
		return fmt.Errorf("error starting the logger: %s ", err)
	}
	return nil
}

// SetLogLevels sets the logging level for all of the subsystems to the given
// level. An appropriate error is returned if the level is invalid.
func SetLogLevels(logLevel string) error {
	level, ok := LevelFromString(logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %s", logLevel)
	}

	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()
	for _, logger := range subsystems {
		logger.SetLevel(level)
	}
	return nil
}

// SetLogLevel sets the logging level of the given subsystem. An error is
// returned if the subsystem doesn't exist or the level is invalid.
func SetLogLevel(subsystem string, logLevel string) error {
	level, ok := LevelFromString(logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %s", logLevel)
	}

	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()
	logger, ok := subsystems[subsystem]
	if !ok {
		return fmt.Errorf("unknown subsystem %s", subsystem)
	}
	logger.SetLevel(level)
	return nil
}

// Close finalizes the logging backend and all of its writers.
func Close() {
	backendLog.Close()
}

// Backend returns the backend this logger writes to.
func (l *Logger) Backend() *Backend {
	return l.b
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return l.lvl
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	l.lvl = level
}

// Trace formats a message using the default formats for its operands, and
// writes it with LevelTrace.
func (l *Logger) Trace(args ...interface{}) {
	l.print(LevelTrace, args...)
}

// Tracef formats a message according to a format specifier and writes it
// with LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.printf(LevelTrace, format, args...)
}

// Debug writes a message with LevelDebug.
func (l *Logger) Debug(args ...interface{}) {
	l.print(LevelDebug, args...)
}

// Debugf writes a formatted message with LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.printf(LevelDebug, format, args...)
}

// Info writes a message with LevelInfo.
func (l *Logger) Info(args ...interface{}) {
	l.print(LevelInfo, args...)
}

// Infof writes a formatted message with LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.printf(LevelInfo, format, args...)
}

// Warn writes a message with LevelWarn.
func (l *Logger) Warn(args ...interface{}) {
	l.print(LevelWarn, args...)
}

// Warnf writes a formatted message with LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf(LevelWarn, format, args...)
}

// Error writes a message with LevelError.
func (l *Logger) Error(args ...interface{}) {
	l.print(LevelError, args...)
}

// Errorf writes a formatted message with LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(LevelError, format, args...)
}

// Critical writes a message with LevelCritical.
func (l *Logger) Critical(args ...interface{}) {
	l.print(LevelCritical, args...)
}

// Criticalf writes a formatted message with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.printf(LevelCritical, format, args...)
}

func (l *Logger) print(level Level, args ...interface{}) {
	if l.lvl > level {
		return
	}
	l.write(level, fmt.Sprint(args...))
}

func (l *Logger) printf(level Level, format string, args ...interface{}) {
	if l.lvl > level {
		return
	}
	l.write(level, fmt.Sprintf(format, args...))
}

func (l *Logger) write(level Level, msg string) {
	if !l.b.IsRunning() {
		return
	}
	l.writeChan <- logEntry{
		log:   formatEntry(l.b.flag, level, l.tag, msg),
		level: level,
	}
}

// defaultCalldepth is the call depth from the exported logging method down to
// the runtime.Caller call inside formatEntry.
const defaultCalldepth = 4

// formatEntry formats a log entry with the standard header:
// 2006-01-02 15:04:05.000 [INF] TAG: message
func formatEntry(flags uint32, level Level, tag string, msg string) []byte {
	t := time.Now()

	buf := make([]byte, 0, normalLogSize+len(msg))
	buf = append(buf, t.Format("2006-01-02 15:04:05.000")...)
	buf = append(buf, " ["...)
	buf = append(buf, level.String()...)
	buf = append(buf, "] "...)
	buf = append(buf, tag...)

	if flags&(LogFlagShortFile|LogFlagLongFile) != 0 {
		file, line, ok := callsite(flags)
		if ok {
			buf = append(buf, ' ')
			buf = append(buf, file...)
			buf = append(buf, ':')
			buf = append(buf, fmt.Sprintf("%d", line)...)
		}
	}

	buf = append(buf, ": "...)
	buf = append(buf, msg...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		buf = append(buf, '\n')
	}
	return buf
}

// callsite returns the file name and line number of the logging callsite.
func callsite(flags uint32) (string, int, bool) {
	_, file, line, ok := runtime.Caller(defaultCalldepth)
	if !ok {
		return "", 0, false
	}
	if flags&LogFlagShortFile != 0 {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if os.IsPathSeparator(file[i]) {
				short = file[i+1:]
				break
			}
		}
		file = short
	} else if idx := strings.Index(file, "github.com"); idx != -1 {
		file = file[idx:]
	}
	return file, line, true
}
