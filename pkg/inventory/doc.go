// Package inventory keeps a local record of receivers seen on the
// network: discovery identity keyed by MAC, the address they were last
// reached at, and the custom input names last learned from them. The
// names cache lets the CLI show something useful when a receiver is
// asleep.
package inventory
