// Package tui implements the tunnelctl dashboard using Bubble Tea.
//
// The dashboard is a read-mostly view of a state.Store:
//
//   - header: connection status badge and the last error
//   - profiles panel: loaded profiles, the cursor and the active marker
//   - diagnostics panel: steps in first-seen order with a summary
//   - log panel: the filtered log view in a scrollable viewport
//   - footer: status messages, internal log entries and key help
//
// The model never reads the store from View. A change bridge subscribes to
// the store, coalesces notifications into a single pending message and the
// model copies only the containers that changed. Store callbacks therefore
// never block on the program, and key handlers may call store mutators from
// Update without deadlocking.
//
// Internal log output is drained from the channel returned by
// logging.InitForTUI so that it does not corrupt the alternate screen.
package tui
