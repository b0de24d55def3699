// Package server exposes the classification pipeline over HTTP.
//
// Routes:
//
//	GET  /          health message
//	POST /analyze   {"url": "..."} -> {"url","status","confidence","reason","stage"}
//	GET  /history   recent attempts, when an event store is configured
//
// CORS is open to every origin so browser extensions and local pages can
// call the API directly.
package server
