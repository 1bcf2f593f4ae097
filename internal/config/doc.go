// Package config provides configuration management for tunnelctl.
//
// Configuration is loaded from YAML files and merged in order, later sources
// overriding earlier ones:
//
//  1. Default configuration (compiled in)
//  2. User configuration (~/.config/tunnelctl/config.yaml)
//  3. Project configuration (./.tunnelctl/config.yaml)
//
// A file given with --config replaces steps 2 and 3.
//
// # Configuration Structure
//
//	backend:
//	  command: ["autopaqet", "--events"]
//	  env:
//	    PAQET_LOG: "debug"
//	  profilesFile: "~/.autopaqet/profiles.json"
//
//	state:
//	  logCapacity: 5000
//	  defaultLogFilter: "all"     # all, info, warn or error
//	  clearErrorOnRecovery: true
//
//	logging:
//	  level: "info"
//
//	mcp:
//	  name: "tunnelctl"
//	  transport: "stdio"          # or "sse"
//	  host: "localhost"
//	  port: 8091
//
// The backend command must write newline-delimited JSON events on stdout:
//
//	{"event":"connection:state","data":"connected"}
//	{"event":"diag:step","data":{"id":"ping","status":"pass","message":"12ms"}}
//	{"event":"log:line","data":"[INFO] socks5 listening"}
//
// Any other stdout line, and every stderr line, is treated as a log line.
//
// Scalar fields are replaced by the overlay when set. The env map is merged
// key by key. The command list is replaced as a whole.
package config
