package cmd

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/output"
	"github.com/mj1618/winwatch/internal/platform"
	"github.com/mj1618/winwatch/internal/registry"
	"github.com/mj1618/winwatch/internal/rules"
	"github.com/mj1618/winwatch/internal/version"
	"gopkg.in/yaml.v3"
)

// mcpServer exposes a running registry as MCP tools.
type mcpServer struct {
	reg     *registry.Registry
	manager platform.WindowManager
	mcp     *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
}

// newMCPServer creates and configures an MCP server over reg. manager may be
// nil, in which case the focus and show tools report an error.
func newMCPServer(reg *registry.Registry, manager platform.WindowManager) *mcpServer {
	s := &mcpServer{
		reg:     reg,
		manager: manager,
	}

	s.mcp = mcpserver.NewMCPServer(
		"winwatch",
		version.Version,
	)

	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List every top-level window in the registry's latest snapshot"),
			mcp.WithBoolean("refresh", mcp.Description("Enumerate windows now instead of using the last background refresh")),
		),
		s.handleListWindows,
	)

	s.mcp.AddTool(
		mcp.NewTool("filter_windows",
			mcp.WithDescription("List windows accepted by a rule, e.g. '$.title match {.*Chrome} and $.visible is true'"),
			mcp.WithString("rule", mcp.Description("Filter rule (default: the configured rule)")),
			mcp.WithBoolean("refresh", mcp.Description("Enumerate windows now instead of using the last background refresh")),
		),
		s.handleFilterWindows,
	)

	s.mcp.AddTool(
		mcp.NewTool("check_rule",
			mcp.WithDescription("Parse a rule and explain clause by clause how it evaluates against a window"),
			mcp.WithString("rule", mcp.Description("Rule to check"), mcp.Required()),
			mcp.WithString("title", mcp.Description("Window title")),
			mcp.WithBoolean("visible", mcp.Description("Window visibility")),
		),
		s.handleCheckRule,
	)

	s.mcp.AddTool(
		mcp.NewTool("focus_window",
			mcp.WithDescription("Bring a window to the foreground by handle"),
			mcp.WithString("handle", mcp.Description("Window handle (decimal or 0x hex)"), mcp.Required()),
		),
		s.handleFocusWindow,
	)

	s.mcp.AddTool(
		mcp.NewTool("show_window",
			mcp.WithDescription("Make a hidden or minimized window visible by handle"),
			mcp.WithString("handle", mcp.Description("Window handle (decimal or 0x hex)"), mcp.Required()),
		),
		s.handleShowWindow,
	)
}

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func (s *mcpServer) maybeRefresh(ctx context.Context, params map[string]interface{}) error {
	if !boolParam(params, "refresh", false) {
		return nil
	}
	return s.reg.Refresh(ctx)
}

func (s *mcpServer) listResult(rule *rules.Rule, windows []model.Window) output.ListResult {
	snap := s.reg.Snapshot()
	result := output.ListResult{Seq: snap.Seq, TS: snap.TakenAt.Unix(), Windows: windows}
	if rule != nil {
		result.Rule = rule.String()
	}
	return result
}

func (s *mcpServer) handleListWindows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.maybeRefresh(ctx, request.GetArguments()); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(s.listResult(nil, s.reg.Snapshot().Windows))), nil
}

func (s *mcpServer) handleFilterWindows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	rule := s.reg.Rule()
	if text := stringParam(params, "rule", ""); text != "" {
		parsed, err := rules.Parse(text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rule = parsed
	}
	if err := s.maybeRefresh(ctx, params); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	windows, err := rules.FilterWindows(rule, s.reg.Snapshot().Windows)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(s.listResult(rule, windows))), nil
}

func (s *mcpServer) handleCheckRule(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	rule, err := rules.Parse(stringParam(params, "rule", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	w := model.Window{
		Title:   stringParam(params, "title", ""),
		Visible: boolParam(params, "visible", false),
	}
	return mcp.NewToolResultText(toText(checkWindow(rule, w))), nil
}

func (s *mcpServer) handleFocusWindow(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.windowAction(request, "focus", func(h model.Handle) error { return s.manager.BringToFront(h) })
}

func (s *mcpServer) handleShowWindow(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.windowAction(request, "show", func(h model.Handle) error { return s.manager.Show(h) })
}

func (s *mcpServer) windowAction(request mcp.CallToolRequest, action string, fn func(model.Handle) error) (*mcp.CallToolResult, error) {
	if s.manager == nil {
		return mcp.NewToolResultError("window management not available on this platform"), nil
	}
	h, err := model.ParseHandle(stringParam(request.GetArguments(), "handle", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := fn(h); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s %s: %v", action, h, err)), nil
	}
	result := output.ActionResult{OK: true, Action: action}
	if w, ok := s.reg.Snapshot().Lookup(h); ok {
		result.Window = &w
	}
	return mcp.NewToolResultText(toText(result)), nil
}
