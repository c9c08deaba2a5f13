// Package session provides in-memory storage for walk sessions.
//
// Manager implements service.SessionManager. Sessions are keyed by a short
// random hex ID, looked up case-insensitively, and pruned by
// CleanupExpiredSessions once they go unused for longer than a retention
// window. Sessions live only as long as the process.
package session
