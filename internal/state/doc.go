// Package state holds the client-side view of the tunnel backend.
//
// A Store groups four containers:
//
//   - Connection: the backend status (idle, starting, connected, error) and
//     the last error message.
//   - Diagnostics: the diagnostic steps in first-seen order, one entry per ID.
//   - Logs: a bounded ring buffer of log lines with a filtered view.
//   - Profiles: the profile collection, the active selection and the derived
//     active profile.
//
// Connection, Diagnostics and Logs are fed by backend events. Store.Attach
// subscribes them to an events.Bus, validating payloads on the way in:
//
//	bus := events.NewBus()
//	store := state.NewStore(state.DefaultOptions())
//	att := store.Attach(bus)
//	defer att.Detach()
//
// Profiles are pulled on demand through a ProfileSource with LoadProfiles.
//
// # Observation
//
// Every observable value has a Subscribe method. The callback receives the
// current value immediately and then every new value. SubscribeChanges
// delivers a value-less notification instead, for consumers that coalesce
// updates and read snapshots when they render.
//
// Each container applies a mutation under its lock and notifies observers
// before the next mutation of the same container starts. Callbacks may read
// any container but must not mutate the container that notified them.
package state
