// Package server accepts TCP connections and runs one session per client.
//
// A session reads request lines, parses them with the protocol package,
// hands each operation to the store owner and writes the single response
// line back before reading the next request. Sessions never touch the
// map themselves; every read and write goes through the owner.
//
// The server supports:
//   - Unbounded concurrent client connections
//   - Line-oriented SET, GET and DELETE commands
//   - Per-connection failure isolation
//   - Connection and command statistics
package server
