// Package logcapture captures the diagnostic output of the library under
// test into four independent channels and lets tests query it.
//
// The library logs through a slog.Handler returned by Sink.Handler. Each
// log call lands in every part:
//
//	PartLevel    severity name ("INFO", "ERROR", ...)
//	PartMessage  the log message
//	PartInfo     the remaining attributes as key=value pairs
//	PartCode     the "code" attribute, "0" when absent
//
// so a test can assert on "an error was logged", "acquireToken was called"
// and "error code 3 was reported" independently, without parsing one
// interleaved stream.
//
// A Sink belongs to one test. Nothing clears it implicitly; the harness
// clears it at test begin and end.
package logcapture
