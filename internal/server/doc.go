// Package server wires and runs the portal's transport servers.
//
// It runs the HTTP API and the optional gRPC health server side by side
// under one errgroup, stops them on SIGTERM, SIGINT or SIGQUIT, and shuts
// them down gracefully.
package server
