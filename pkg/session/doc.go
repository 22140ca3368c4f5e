/*
Package session orchestrates persisted agent state.

It serializes work on one agent (restore, plan, execute, persist) behind a
per-agent lock, optionally extended across replicas with a distributed
locker, and keeps the agent's live state in a ports.StateStore between runs.
*/
package session
