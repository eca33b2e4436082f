// Package devicelink owns the serial connection to the screwdriver
// controller.
//
// A Link opens a port through go.bug.st/serial (or any Opener), runs a read
// loop that decodes incoming bytes as UTF-8 text, and writes encoded
// commands fire-and-forget. Failures are reported as *LinkError values
// grouped by ErrorType.
package devicelink
