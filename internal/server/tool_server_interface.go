// Package server exposes the summarization pipeline to clients, as MCP tools
// over stdio and as a JSON HTTP API.
package server

// ToolServer is a transport serving the summarization tools.
type ToolServer interface {
	// Initialize wires the handlers. It must be called before Start.
	Initialize() error

	// Start serves requests and blocks until the transport stops.
	Start() error

	// Stop gracefully shuts down the transport.
	Stop() error
}
