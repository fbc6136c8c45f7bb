// Package storage holds the key-value map and the single goroutine that
// owns it.
//
// The map (Memory) is never shared. All access goes through an Owner,
// which receives operations on a queue and applies them one at a time in
// arrival order. Every submitted operation carries its own reply channel,
// so each result goes back to exactly the caller that asked for it.
//
// Basic usage:
//
//	owner := storage.NewOwner()
//	go owner.Run()
//	defer owner.Close()
//
//	reply, err := owner.Do(protocol.Set("key", "value"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(reply.Text) // Ok
package storage
