// Package tsversion holds the server build version embedded in the
// HELLO handshake reply.
package tsversion

import "github.com/blang/semver"

// Current is the running server's build version. It is carried in the
// HELLO greeting tuple's name as free text; it is never part of the
// wire Packet layout itself.
var Current = semver.MustParse("0.1.0")
