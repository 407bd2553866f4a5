// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the index query and maintenance tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/eristoddle/mdquery-sub000/internal/index"
	"github.com/eristoddle/mdquery-sub000/internal/queryservice"
)

// Server wraps the MCP server with query and indexing tools.
type Server struct {
	mcp *server.MCPServer
	svc *queryservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *queryservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"mdquery",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Full-text search over indexed file titles, bodies, and headings."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.search)

	s.mcp.AddTool(mcp.NewTool("get_file",
		mcp.WithDescription("Return the derived metadata for one indexed file: frontmatter, tags, links, counts."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
	), s.getFile)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag in the index with its file count."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("index_directory",
		mcp.WithDescription("Incrementally index a directory of markdown files. Unchanged files are skipped."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to index")),
		mcp.WithBoolean("recursive", mcp.Description("Recurse into subdirectories (default true)")),
	), s.indexDirectory)

	s.mcp.AddTool(mcp.NewTool("sync_directory",
		mcp.WithDescription("Reconcile the index with disk: add new files, re-index changed ones, drop removed ones."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to sync")),
		mcp.WithBoolean("recursive", mcp.Description("Recurse into subdirectories (default true)")),
	), s.syncDirectory)

	s.mcp.AddTool(mcp.NewTool("cache_status",
		mcp.WithDescription("Report cache validity, file count, and last-update time."),
	), s.cacheStatus)

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

func (s *Server) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not indexed: %s", path)), nil
	}
	return jsonResult(detail)
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.Tags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) indexDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stats, err := s.svc.IndexDirectory(ctx, path, req.GetBool("recursive", true))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func (s *Server) syncDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stats, err := s.svc.SyncDirectory(ctx, path, req.GetBool("recursive", true))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func (s *Server) cacheStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Status(ctx, index.DefaultMaxAge)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
