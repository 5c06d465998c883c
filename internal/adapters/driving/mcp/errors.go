// Package mcp provides an MCP (Model Context Protocol) server adapter
// for kbase. It lets AI assistants search the local knowledge base and
// ask grounded questions over it.
package mcp

import "errors"

// ErrMissingKnowledgeService is returned when the knowledge service is not provided.
var ErrMissingKnowledgeService = errors.New("mcp: knowledge service is required")

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
