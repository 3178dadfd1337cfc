// Package server implements the HTTP server and HTTP handlers for
// docdrop. It wires together the HTTP routes, dependencies (user and
// file stores, blob storage, email), and provides lifecycle helpers
// used by tests and the production binary.
package server
