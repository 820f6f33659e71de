// Package sample stores pulse sensor readings and derives statistics from them.
//
// A Store is an append-only log of Samples in arrival order. Each sample is
// timestamped by the store when it is appended, so timestamps never decrease.
// The first append fixes the session start, which bounds the BPM window while
// a session is younger than the nominal window.
//
// # BPM estimation
//
// BPM counts runs of readings at or above the detection threshold inside a
// trailing window and scales the count to a per-minute rate:
//
//	window        = min(Window, now - sessionStart)
//	windowSeconds = max(1, round(window / 1s))
//	bpm           = 60 * runs / windowSeconds
//
// A run is a maximal sequence of consecutive above-threshold samples and is
// counted once however long it is, so a wide pulse is one beat, not many.
//
// # Concurrency
//
// The store has a single writer (the ingestion worker) and any number of
// readers (dashboard, export, feed). All methods are safe for concurrent use;
// read methods return copies, never slices aliasing the log.
package sample
