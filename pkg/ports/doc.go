/*
Package ports defines the driven ports (interfaces) around the HTN planner.

These interfaces decouple agents from external implementations, allowing
task trees and agent state to live in various backends.

# Key Interfaces

  - TreeLoader: Loads a task tree and its initial state (e.g., from a YAML file).
  - StateStore: Persists and loads agent live state.
  - DistributedLocker: Provides distributed locking for concurrent access to one agent.
*/
package ports
