// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note collection as tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/laguz/internal/idgen"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/snapshot"
	"github.com/starford/laguz/internal/store"
	"github.com/starford/laguz/internal/tasks"
	"github.com/starford/laguz/internal/views"
)

// Server wraps the MCP server with note tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
	st  store.Store
	ids *idgen.Generator
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, st store.Store, ids *idgen.Generator) *Server {
	s := &Server{svc: svc, st: st, ids: ids}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes as id, title, and preview. Trashed notes are excluded."),
		mcp.WithString("folder", mcp.Description("Optional folder name to list (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full Markdown content of a note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Numeric note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note with the given title and Markdown content. "+
			"Checklist lines (- [ ] task) become tasks; append @YYYY-MM-DD for a due "+
			"date and #tag for task tags."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
		mcp.WithString("folder", mcp.Description("Optional folder name; must already exist")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive substring search over note titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List checklist tasks extracted from all notes."),
		mcp.WithString("tag", mcp.Description("Optional task tag filter")),
		mcp.WithBoolean("hide_completed", mcp.Description("Drop checked tasks from the listing")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Fetch an image from an http(s) URL or base64 data URI and store "+
			"it, returning a Markdown image reference to embed in a note."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Image URL or data URI")),
	), s.uploadImage)

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

type noteSummary struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Date    string `json:"date"`
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := views.Filter{Kind: views.FilterAll}
	if folder, err := req.RequireString("folder"); err == nil && folder != "" {
		f, ok := s.svc.FolderByName(folder)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("folder not found: %s", folder)), nil
		}
		filter = views.Filter{Kind: views.FilterFolder, FolderID: f.ID}
	}

	visible := views.Visible(s.svc.Notes(), filter, views.SortDateDesc, "")
	summaries := make([]noteSummary, 0, len(visible))
	for _, n := range visible {
		summaries = append(summaries, noteSummary{ID: n.ID, Title: n.Title, Preview: n.Preview, Date: n.Date})
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := parseID(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid id: %s", raw)), nil
	}
	n, err := s.svc.NoteByID(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", raw)), nil
	}
	return mcp.NewToolResultText(string(snapshot.ToMarkdown(*n))), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var folderID *int64
	if folder, fErr := req.RequireString("folder"); fErr == nil && folder != "" {
		f, ok := s.svc.FolderByName(folder)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("folder not found: %s", folder)), nil
		}
		folderID = &f.ID
	}

	n, err := s.svc.CreateNoteFromFile(ctx, title, content, folderID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %d: %s", n.ID, n.Title)), nil
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	visible := views.Visible(s.svc.Notes(), views.Filter{Kind: views.FilterAll}, views.SortDateDesc, query)
	summaries := make([]noteSummary, 0, len(visible))
	for _, n := range visible {
		summaries = append(summaries, noteSummary{ID: n.ID, Title: n.Title, Preview: n.Preview, Date: n.Date})
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTasks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := tasks.ViewOptions{Sort: tasks.SortSource}
	if tag, err := req.RequireString("tag"); err == nil {
		opts.Tag = tag
	}
	if hide, err := req.RequireBool("hide_completed"); err == nil {
		opts.HideCompleted = hide
	}

	list := tasks.View(s.svc.Notes(), opts)
	if len(list) == 0 {
		return mcp.NewToolResultText("no tasks found"), nil
	}

	var b strings.Builder
	for _, task := range list {
		box := "[ ]"
		if task.Checked {
			box = "[x]"
		}
		fmt.Fprintf(&b, "%s %s (note %d: %s", box, task.Text, task.NoteID, task.NoteTitle)
		if task.DueDate != "" {
			fmt.Fprintf(&b, ", due %s", task.DueDate)
		}
		b.WriteString(")\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func parseID(raw string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(raw, "%d", &id)
	return id, err
}
