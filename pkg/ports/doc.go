/*
Package ports defines the driven ports (interfaces) for the arbor engine.

These interfaces decouple the dialog core from external implementations,
allowing sessions to be fed from various tree sources and hosted on various
storage backends.

# Key Interfaces

  - TreeLoader: Loads the authored conversation tree (e.g., from YAML, Loam or memory).
  - SessionStore: Persists the live snapshot of open dialogs.
  - DistributedLocker: Serializes access to one dialog across replicas.
  - DialogHost: The operations outer adapters (HTTP, MCP) drive.
*/
package ports
