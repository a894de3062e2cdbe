// Package logging constructs the slog loggers used throughout overdub.
//
// Two output formats are supported: a compact console format
// (timestamp LEVEL component: message key=value ...) and standard JSON.
// Components derive their own logger via NewComponentLogger so every
// record carries a component attribute; passing a nil base logger yields
// a no-op logger, which keeps library code usable without logging setup.
package logging
