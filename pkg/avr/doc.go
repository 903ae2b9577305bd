// Package avr provides receiver-level operations on top of the eiscp
// wire protocol: the input selector catalog, custom input name queries,
// display name resolution, status snapshots, and event monitoring.
//
// The centerpiece is the custom-name query. Owners rename inputs on the
// receiver ("01" CBL/SAT becomes "Den TV"); the receiver reports those
// renames through IRN messages, but only for inputs that actually have
// one. [QueryInputNames] sends one query per input, correlates replies
// against the queried set, and returns a typed result that separates
// "no custom names exist" from "the receiver was unreachable".
// [DisplayNames] layers the renames over the factory defaults and always
// produces a complete table.
//
// # Components
//
//   - [InputSource]: selector code with its factory display name
//   - [QueryInputNames]: custom-name query with a typed outcome
//   - [DisplayNames]: factory defaults overridden by custom names
//   - [QueryStatusSnapshot]: power, volume, muting, active input
//   - [Events]: live message stream from the receiver
//
// # Example
//
//	names, result := avr.DisplayNames(ctx, avr.Options{Host: "192.168.1.100"})
//	if result.Status == avr.QueryFailed {
//	    log.Printf("receiver unreachable: %v", result.Err)
//	}
//	for _, in := range avr.Inputs() {
//	    fmt.Printf("%s (%s): %s\n", in.Code(), in.Default(), names[in])
//	}
package avr
