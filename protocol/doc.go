// Package protocol implements the line-oriented text protocol spoken
// between linekv clients and the server.
//
// Every request is a single line terminated by '\n' and every request
// gets exactly one response line back:
//
//	SET <key> <value...>   ->  Ok
//	GET <key>              ->  <value> | empty line
//	DELETE <key>           ->  <previous value> | empty line
//	anything else          ->  Error command
//
// Command keywords are matched case-insensitively, keys and values are
// taken verbatim. Values may contain single spaces: every token after the
// key is rejoined with one space.
//
// Basic usage:
//
//	reader := protocol.NewReader(conn)
//	writer := protocol.NewWriter(conn)
//	for {
//		line, err := reader.ReadLine()
//		if err != nil {
//			break
//		}
//		op := protocol.Parse(line)
//		// hand op to the store owner, then:
//		writer.WriteReply(reply)
//		writer.Flush()
//	}
package protocol
