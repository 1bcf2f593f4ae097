// Package backend launches and supervises the tunnel backend process.
//
// The backend speaks newline-delimited JSON on stdout, one event per line:
//
//	{"event":"connection:state","data":"connected"}
//
// Process publishes those events on an events.Bus. Stdout lines that are not
// events and all stderr lines become log lines. When the process exits the
// supervisor publishes connection:state idle, or connection:error followed by
// connection:state error for a non-zero exit.
package backend
