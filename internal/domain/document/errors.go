package document

import "errors"

var (
	// ErrNotConnected is returned by the vector store when used before Connect.
	ErrNotConnected = errors.New("vector store not connected")

	// ErrEmbeddingBackend wraps any failure of the embedding model backend.
	ErrEmbeddingBackend = errors.New("embedding backend error")

	// ErrSourceFetch is logged by adapters for per-item network or parse failures.
	ErrSourceFetch = errors.New("source fetch error")

	// ErrAnsweringBackend wraps failures of the answer generation backend.
	ErrAnsweringBackend = errors.New("answering backend error")

	// ErrConfiguration is returned by constructors given unusable settings.
	ErrConfiguration = errors.New("configuration error")
)
