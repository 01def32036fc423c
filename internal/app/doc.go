// Package app wires the application together: configuration, logging,
// paths, services, the HTTP server and the optional pipeline scheduler.
// The cmd binaries stay thin by delegating construction here.
package app
