// Package eiscp implements the Ethernet ISCP protocol used by
// Onkyo and Integra network receivers.
//
// An eISCP packet is a 16-byte header (magic "ISCP", header size, data
// size, version) followed by an ASCII ISCP message and an end-byte
// sequence. Messages look like "!1PWR01": unit type, 3-character
// command, value. Receivers differ in which end bytes they emit and
// accept; this package recognizes every known variant on receive and
// sends a configurable one.
//
// # Components
//
//   - [Conn]: TCP connection to one receiver
//   - [Message]: decoded ISCP message, validated at the boundary
//   - [Discover]: UDP broadcast scan for receivers on the local network
//   - [ResolveCommand]: friendly command names to wire codes, per zone
//
// # Example
//
//	conn, err := eiscp.Connect(ctx, eiscp.Config{Host: "192.168.1.100"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	// Ask for the power state
//	if err := conn.Send(ctx, eiscp.ZoneMain, "system-power", eiscp.QueryValue); err != nil {
//	    log.Fatal(err)
//	}
//
//	msg, err := conn.Recv(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s = %s\n", msg.Command, msg.Value)
package eiscp
