package logger

// Standard field keys for structured logging. Use these consistently so log
// lines stay queryable across the acceptor, sessions and command handlers.
const (
	KeyAddress  = "address"  // client remote address
	KeyUser     = "user"     // authenticated username
	KeyVerb     = "verb"     // protocol verb (UPLOAD, LOGIN, ...)
	KeyFilename = "filename" // transfer target filename
	KeySize     = "size"     // declared transfer size in bytes
	KeyBytes    = "bytes"    // bytes moved so far
	KeyError    = "error"    // error value
	KeyActive   = "active"   // active connection count
	KeyPort     = "port"     // listening port
	KeyOutcome  = "outcome"  // audit outcome tag
)
