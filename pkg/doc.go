// Package pkg provides shared utilities for the temperhum driver.
//
// This package contains functionality used by the core driver and by every
// transport, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel errors for transport and session failures
//   - Component identifiers for log filtering
//
// # Logging
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentLifecycle, "attached", "device", "/dev/bus/usb/001/004")
//
// # Errors
//
// Transports report failures with the sentinels defined here so callers can
// test for them regardless of backend:
//
//	if errors.Is(err, pkg.ErrNoDevice) {
//	    // sensor was unplugged
//	}
//
// A transfer that moves the wrong number of bytes is reported as a
// [*TransferError], which matches [ErrTransferLength].
package pkg
