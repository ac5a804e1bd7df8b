// Package services implements the business logic of the bot: resolving
// searches against the cache or the remote catalog, paginating results,
// coordinating favorite/viewed toggles, and maintaining the search history.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages is performed at the update-dispatch boundary.
package services

import "errors"

var (
	// ErrBrowsingExpired is returned when a pagination action arrives with
	// no active browsing window (process restart, purged session). It is a
	// named recovery condition, not a fault: the dispatcher resets the user
	// to title entry and tells them their browsing session ended.
	ErrBrowsingExpired = errors.New("browsing session expired")

	// ErrHistoryEntryNotFound indicates that a selected history entry no
	// longer exists (purged between listing and selection).
	ErrHistoryEntryNotFound = errors.New("history entry not found")
)
