// Package lua runs Lua scripts against a linekv server.
//
// Scripts see a global kv table:
//   - kv.call(cmd, ...) sends one request line and raises on a rejected command
//   - kv.pcall(cmd, ...) does the same but returns {err=...} instead of raising
//   - kv.set(key, value), kv.get(key) and kv.delete(key) wrap the three commands
//
// An empty response becomes nil. Script arguments are available in ARGV.
package lua
