// Package logger is the process-wide job log. By default lines go to
// standard streams; InitFile mirrors them into a log file so a long-running
// sync leaves an audit trail of every tick.
package logger

import (
	"io"
	"log"
	"os"
)

var (
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	logFile  *os.File
)

const flags = log.Ldate | log.Ltime

func init() {
	infoLog = log.New(os.Stdout, "INFO: ", flags)
	warnLog = log.New(os.Stdout, "WARN: ", flags)
	errorLog = log.New(os.Stderr, "ERROR: ", flags)
}

// InitFile mirrors all log output into the named file, appending across
// runs.
func InitFile(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	out := io.MultiWriter(os.Stdout, f)
	infoLog = log.New(out, "INFO: ", flags)
	warnLog = log.New(out, "WARN: ", flags)
	errorLog = log.New(io.MultiWriter(os.Stderr, f), "ERROR: ", flags)
	return nil
}

func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func Info(format string, v ...any) {
	infoLog.Printf(format, v...)
}

func Warn(format string, v ...any) {
	warnLog.Printf(format, v...)
}

func Error(format string, v ...any) {
	errorLog.Printf(format, v...)
}
