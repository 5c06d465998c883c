// Package domain contains the core business entities for the knowledge base:
// documents, chunks, search results, answers, and the error taxonomy.
// It has no dependencies on adapters or infrastructure.
package domain
