package api

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/floorspeech/pkg/kit"
)

// RegisterMCPTools registers the floorspeech MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, svc *Service) {
	eps := svc.endpoints()

	kit.RegisterMCPTool(srv, mcp.NewTool("segment",
		mcp.WithDescription("Split Congressional Record text into floor speeches (title, speaker fragment, body)."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Raw text of a Record issue")),
		mcp.WithString("issue_date", mcp.Required(), mcp.Description("Issue date, YYYY-MM-DD or RFC 3339")),
		mcp.WithString("source_url", mcp.Description("URL of the source PDF")),
	), eps.segment, decodeDocument)

	kit.RegisterMCPTool(srv, mcp.NewTool("attribute",
		mcp.WithDescription("Segment Congressional Record text and attribute each speech to a legislator of the session in force on the issue date."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Raw text of a Record issue")),
		mcp.WithString("issue_date", mcp.Required(), mcp.Description("Issue date, YYYY-MM-DD or RFC 3339")),
		mcp.WithString("source_url", mcp.Description("URL of the source PDF")),
		mcp.WithString("documents", mcp.Description("JSON array of {text, issue_date, source_url}; replaces the single-document arguments")),
	), eps.attribute, decodeDocument)

	kit.RegisterMCPTool(srv, mcp.NewTool("resolve_speaker",
		mcp.WithDescription("Resolve a speaker fragment such as \"Mr. SMITH of Ohio\" against the roster of a session."),
		mcp.WithNumber("session", mcp.Required(), mcp.Description("Congress number, e.g. 118")),
		mcp.WithString("speaker", mcp.Required(), mcp.Description("Speaker fragment as printed in the Record")),
	), eps.resolve, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		session, _ := args["session"].(float64)
		speaker, _ := args["speaker"].(string)
		return &kit.MCPDecodeResult{Request: &resolveReq{Session: int(session), Speaker: speaker}}, nil
	})

	kit.RegisterMCPTool(srv, mcp.NewTool("list_sessions",
		mcp.WithDescription("List loaded session rosters with their provenance and legislator counts."),
	), eps.sessions, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

// decodeDocument accepts either a "documents" JSON array or the single
// text/issue_date/source_url arguments.
func decodeDocument(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	if raw, _ := args["documents"].(string); raw != "" {
		var docs []documentReq
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return nil, fmt.Errorf("documents: %w", err)
		}
		return &kit.MCPDecodeResult{Request: &documentsReq{Documents: docs}}, nil
	}
	text, _ := args["text"].(string)
	date, _ := args["issue_date"].(string)
	url, _ := args["source_url"].(string)
	return &kit.MCPDecodeResult{Request: &documentsReq{
		Documents: []documentReq{{Text: text, IssueDate: date, SourceURL: url}},
	}}, nil
}
