// Package logging provides the level-tagged logging used across the engine,
// matching the plain log.Printf("WARN: ...") style the rest of the stack uses.
package logging

import "log"

func Info(format string, args ...any) {
	log.Printf("INFO: "+format, args...)
}

func Warn(format string, args ...any) {
	log.Printf("WARN: "+format, args...)
}

func Error(format string, args ...any) {
	log.Printf("ERROR: "+format, args...)
}

func Fatal(format string, args ...any) {
	log.Fatalf("FATAL: "+format, args...)
}
