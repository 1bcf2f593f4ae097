package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tunnelctl/internal/events"
	"tunnelctl/internal/state"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// defaultLogLimit caps log_lines output when no limit is given.
const defaultLogLimit = 200

// StateTools exposes a state.Store as MCP tools.
type StateTools struct {
	store *state.Store
	bus   events.Bus
}

// NewStateTools creates tools over store. bus may be nil; it only feeds the
// event_metrics tool.
func NewStateTools(store *state.Store, bus events.Bus) *StateTools {
	return &StateTools{store: store, bus: bus}
}

func filterNames() []string {
	var names []string
	for _, f := range state.LogFilters() {
		names = append(names, string(f))
	}
	return names
}

// GetTools returns all tool definitions
func (st *StateTools) GetTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("connection_status",
			mcp.WithDescription("Get the tunnel connection status and the last error"),
		),
		mcp.NewTool("diagnostic_steps",
			mcp.WithDescription("List diagnostic steps in execution order with a per-status summary"),
		),
		mcp.NewTool("diagnostics_reset",
			mcp.WithDescription("Clear all diagnostic steps before a new run"),
		),
		mcp.NewTool("log_lines",
			mcp.WithDescription("Get the most recent visible log lines"),
			mcp.WithString("filter",
				mcp.Description("Filter to apply instead of the active one"),
				mcp.Enum(filterNames()...),
			),
			mcp.WithNumber("limit",
				mcp.Description(fmt.Sprintf("Maximum number of lines, newest last (default: %d, 0 for all)", defaultLogLimit)),
			),
		),
		mcp.NewTool("log_filter_set",
			mcp.WithDescription("Change the active log filter"),
			mcp.WithString("filter",
				mcp.Required(),
				mcp.Description("Filter name"),
				mcp.Enum(filterNames()...),
			),
		),
		mcp.NewTool("logs_clear",
			mcp.WithDescription("Clear the log buffer"),
		),
		mcp.NewTool("profiles_list",
			mcp.WithDescription("List connection profiles and the active selection"),
		),
		mcp.NewTool("profile_select",
			mcp.WithDescription("Select the active connection profile"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Profile ID; an empty string clears the selection"),
			),
		),
		mcp.NewTool("profiles_load",
			mcp.WithDescription("Reload profiles from the backend profile store"),
		),
		mcp.NewTool("event_metrics",
			mcp.WithDescription("Get event bus counters, including rejected events"),
		),
	}
}

// handlers maps tool names to their handlers.
func (st *StateTools) handlers() map[string]server.ToolHandlerFunc {
	return map[string]server.ToolHandlerFunc{
		"connection_status": st.HandleConnectionStatus,
		"diagnostic_steps":  st.HandleDiagnosticSteps,
		"diagnostics_reset": st.HandleDiagnosticsReset,
		"log_lines":         st.HandleLogLines,
		"log_filter_set":    st.HandleLogFilterSet,
		"logs_clear":        st.HandleLogsClear,
		"profiles_list":     st.HandleProfilesList,
		"profile_select":    st.HandleProfileSelect,
		"profiles_load":     st.HandleProfilesLoad,
		"event_metrics":     st.HandleEventMetrics,
	}
}

// Register adds every tool to s.
func (st *StateTools) Register(s *server.MCPServer) {
	handlers := st.handlers()
	for _, tool := range st.GetTools() {
		s.AddTool(tool, handlers[tool.Name])
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleConnectionStatus handles the connection_status tool call
func (st *StateTools) HandleConnectionStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn := st.store.Connection()
	return jsonResult(map[string]interface{}{
		"status":    conn.Status(),
		"lastError": conn.LastError(),
	})
}

// HandleDiagnosticSteps handles the diagnostic_steps tool call
func (st *StateTools) HandleDiagnosticSteps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diag := st.store.Diagnostics()
	return jsonResult(map[string]interface{}{
		"steps":   diag.Steps(),
		"summary": diag.Summary(),
	})
}

// HandleDiagnosticsReset handles the diagnostics_reset tool call
func (st *StateTools) HandleDiagnosticsReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st.store.ResetDiagnostics()
	return mcp.NewToolResultText("Diagnostic steps cleared"), nil
}

// HandleLogLines handles the log_lines tool call
func (st *StateTools) HandleLogLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	logs := st.store.Logs()
	filter := logs.Filter()
	if raw, ok := args["filter"].(string); ok && raw != "" {
		f, err := state.ParseLogFilter(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter = f
	}

	limit := defaultLogLimit
	switch v := args["limit"].(type) {
	case float64:
		limit = int(v)
	case int:
		limit = v
	}
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}

	var lines []string
	if filter == logs.Filter() {
		lines = logs.Visible()
	} else {
		for _, l := range logs.Lines() {
			if state.MatchesFilter(filter, l) {
				lines = append(lines, l)
			}
		}
	}
	total := len(lines)
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	if lines == nil {
		lines = []string{}
	}

	return jsonResult(map[string]interface{}{
		"filter":   filter,
		"lines":    lines,
		"returned": len(lines),
		"matching": total,
		"buffered": logs.Len(),
		"capacity": logs.Capacity(),
	})
}

// HandleLogFilterSet handles the log_filter_set tool call
func (st *StateTools) HandleLogFilterSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("filter")
	if err != nil {
		return mcp.NewToolResultError("filter is required"), nil
	}
	f, err := state.ParseLogFilter(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := st.store.SetLogFilter(f); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to set filter: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Log filter set to '%s'", f)), nil
}

// HandleLogsClear handles the logs_clear tool call
func (st *StateTools) HandleLogsClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st.store.ClearLogs()
	return mcp.NewToolResultText("Log buffer cleared"), nil
}

// HandleProfilesList handles the profiles_list tool call
func (st *StateTools) HandleProfilesList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := st.store.Profiles()
	return jsonResult(map[string]interface{}{
		"profiles": p.List(),
		"activeId": p.ActiveID(),
		"active":   p.Active(),
		"stats":    p.LoadStats(),
	})
}

// HandleProfileSelect handles the profile_select tool call
func (st *StateTools) HandleProfileSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	st.store.SelectProfile(id)

	if id != "" && st.store.Profiles().Active() == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Selected '%s', but no loaded profile has that ID", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Selected profile '%s'", id)), nil
}

// HandleProfilesLoad handles the profiles_load tool call
func (st *StateTools) HandleProfilesLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := st.store.ReloadProfiles(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load profiles: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Loaded %d profiles", n)), nil
}

// HandleEventMetrics handles the event_metrics tool call
func (st *StateTools) HandleEventMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if st.bus == nil {
		return mcp.NewToolResultError("No event bus attached"), nil
	}
	m := st.bus.GetMetrics()

	byTopic := make(map[string]int64, len(m.EventsByTopic))
	for topic, n := range m.EventsByTopic {
		byTopic[string(topic)] = n
	}
	var last string
	if !m.LastEventTime.IsZero() {
		last = m.LastEventTime.Format(time.RFC3339)
	}
	return jsonResult(map[string]interface{}{
		"published":     m.EventsPublished,
		"delivered":     m.EventsDelivered,
		"rejected":      m.EventsRejected,
		"handlerPanics": m.HandlerPanics,
		"subscriptions": m.ActiveSubscriptions,
		"lastEvent":     last,
		"byTopic":       byTopic,
	})
}
