// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// Account IDs are UUIDv7 so they sort by creation time, which keeps the
// primary key index in PostgreSQL append-friendly instead of fragmenting
// the way random UUIDv4 keys do.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// OS entropy failure is an unrecoverable system-level error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// IsValid reports whether value parses as a UUID of any version.
func IsValid(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
