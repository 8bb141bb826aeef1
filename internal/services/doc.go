// Package services holds the interaction core: follow/like toggles, the
// notification ledger, the notifier that feeds it and the story feed.
//
// Writes are single-record operations. Where a call performs two writes
// (an edge then its notification), a failure between them leaves the edge
// without a notification; the second step is logged and never rolls back
// the first.
package services
