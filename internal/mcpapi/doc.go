// Package mcpapi exposes the tunnelctl state containers as MCP tools.
//
// StateTools wraps a state.Store (and optionally the event bus it is attached
// to) and registers one tool per read or mutation: connection_status,
// diagnostic_steps, diagnostics_reset, log_lines, log_filter_set, logs_clear,
// profiles_list, profile_select, profiles_load and event_metrics.
//
// Server serves those tools over stdio or SSE depending on config.MCPConfig.
// Invalid tool arguments produce an error result rather than a protocol error.
package mcpapi
