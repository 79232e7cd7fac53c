//go:build deadlock

// Package syncutil provides mutex types that can optionally use deadlock detection.
package syncutil

import deadlock "github.com/sasha-s/go-deadlock"

// Mutex wraps deadlock.Mutex.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex wraps deadlock.RWMutex.
type RWMutex struct {
	deadlock.RWMutex
}
