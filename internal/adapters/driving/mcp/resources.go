package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for kbase resources.
	uriScheme = "kbase://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for corpus statistics.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Knowledge base statistics",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	// Static resource for listing documents.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all ingested documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for document content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{fileName}",
		Name:        "document-content",
		Description: "Full extracted text of one ingested document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleStatsResource returns corpus statistics.
func (s *Server) handleStatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Knowledge.Stats(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentsResource returns a list of all ingested documents.
func (s *Server) handleDocumentsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Knowledge.Documents(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentContentResource returns the extracted text of one
// document, looked up by its base file name.
func (s *Server) handleDocumentContentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	fileName := strings.TrimPrefix(req.Params.URI, uriScheme+"documents/")
	if fileName == "" || strings.Contains(fileName, "/") {
		return nil, fmt.Errorf("invalid document URI: %s", req.Params.URI)
	}

	for _, summary := range s.ports.Knowledge.Documents() {
		if summary.FileName != fileName {
			continue
		}
		doc, err := s.ports.Knowledge.Document(summary.FilePath)
		if err != nil {
			return nil, fmt.Errorf("loading document %s: %w", summary.FilePath, err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "text/plain",
				Text:     doc.Content,
			}},
		}, nil
	}

	return nil, fmt.Errorf("document not found: %s", fileName)
}
