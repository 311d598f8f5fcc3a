/*
Package ports defines the driven ports (interfaces) of the atidraw tool handlers.

These interfaces decouple the built-in tools from external implementations, allowing
the same handlers to run over different storage backends and image generators.

# Key Interfaces

  - DrawingStore: Persists drawings (memory, Redis or SQLite).
  - DistributedLocker: Provides distributed locking for concurrent writes to one drawing.
  - ImageGenerator: Produces image data for AI drawing requests.
*/
package ports
