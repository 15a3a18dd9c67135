// Package watcher provides a live drift monitor: it subscribes to
// filesystem events under the scan root and re-verifies touched files
// against the committed baseline as they change.
//
// The watcher is strictly read-only with respect to the baseline. Updating
// the store belongs to check runs, which commit atomically; the watcher only
// observes and logs. Content is still verified by fingerprint, never by
// modification time, so it gives the same answer a full check would for the
// touched path.
package watcher
