// Package idcard formats national ID card faces and their machine-readable zone from an application record.
//
// Everything here is pure: no I/O, no clock reads. Callers pass the current time explicitly.
package idcard
