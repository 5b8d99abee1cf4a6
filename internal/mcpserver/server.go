// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes docpress tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docpress/internal/apperr"
	"github.com/starford/docpress/internal/postservice"
	"github.com/starford/docpress/internal/reconcile"
)

const contractURI = "docpress://metadata-format"

// Server wraps the MCP server with docpress tools.
type Server struct {
	mcp *server.MCPServer
	svc *postservice.Service
}

// New creates a new MCP server with all docpress tools registered.
func New(svc *postservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"docpress",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("sync_posts",
		mcp.WithDescription("Synchronize the source documents into posts: convert new or changed "+
			"documents, skip unchanged ones and remove orphaned posts. Returns a per-file report."),
		mcp.WithBoolean("dry_run", mcp.Description("Report what would happen without writing or deleting anything")),
	), s.syncPosts)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List generated posts with their date, title, author and categories."),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a generated post including its front matter."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Post file name as returned by list_posts")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("recent_runs",
		mcp.WithDescription("List recent synchronization passes, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs (default 10)")),
	), s.recentRuns)

	s.mcp.AddTool(mcp.NewTool("get_metadata_contract",
		mcp.WithDescription("Returns the rules for the metadata table in source documents."),
	), s.getMetadataContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Source Document Contract",
			mcp.WithResourceDescription("How source documents declare post metadata."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type syncResult struct {
	DryRun   bool                `json:"dry_run"`
	Summary  map[string]int      `json:"summary"`
	Outcomes []reconcile.Outcome `json:"outcomes"`
	Error    string              `json:"error,omitempty"`
}

func (s *Server) syncPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dryRun := req.GetBool("dry_run", false)

	report, err := s.svc.Sync(ctx, dryRun)
	if report == nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := syncResult{
		DryRun:   report.DryRun,
		Summary:  make(map[string]int),
		Outcomes: report.Outcomes,
	}
	for _, o := range report.Outcomes {
		res.Summary[string(o.Action)]++
	}
	if err != nil {
		res.Error = err.Error()
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(string(out)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.Posts(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no posts"), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.ReadPost(ctx, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) recentRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 10)
	runs, err := s.svc.Runs(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(runs) == 0 {
		return mcp.NewToolResultText("no runs recorded"), nil
	}
	out, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMetadataContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MetadataContract), nil
}

func (s *Server) readContractResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     MetadataContract,
		},
	}, nil
}
