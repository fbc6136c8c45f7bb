// Package linekv provides an in-memory key-value store served over a
// plain-text TCP line protocol.
//
// Clients send one command per line and receive exactly one response line:
//
//	SET <key> <value...>   -> Ok
//	GET <key>              -> <value> or an empty line
//	DELETE <key>           -> <previous value> or an empty line
//	anything else          -> Error command
//
// Every connection is served by its own session goroutine, and a single
// owner goroutine holds the map. Sessions submit operations to the owner
// and wait for the reply, so the map needs no locks and all mutations are
// applied in one total order.
//
// Basic usage:
//
//	kv, err := linekv.New(
//		linekv.WithAddr("127.0.0.1:8080"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer kv.Close()
//
//	if err := kv.Start(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// The store is not persistent; all data is lost when the process exits.
package linekv
