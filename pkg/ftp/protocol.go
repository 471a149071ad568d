// Package ftp implements the line-oriented file transfer protocol: the TCP
// acceptor, per-connection sessions, command dispatch, and the length-prefixed
// binary transfer framing for UPLOAD and DOWNLOAD.
package ftp

import "strings"

// Protocol verbs. The first whitespace-delimited token of every command line
// is uppercased and matched against these.
const (
	VerbLogin    = "LOGIN"
	VerbRegister = "REGISTER"
	VerbLogout   = "LOGOUT"
	VerbUpload   = "UPLOAD"
	VerbDownload = "DOWNLOAD"
	VerbList     = "LIST"
	VerbHistory  = "HISTORY"
	VerbReport   = "REPORT"
	VerbEcho     = "ECHO"
)

// Fixed wire literals.
const (
	// Banner is written once per connection, before the first command.
	Banner = "Welcome to FTP_FS server!"

	// RespReady acknowledges an accepted UPLOAD verb; the size line follows.
	RespReady = "READY"

	// RespLoginOK is the bespoke LOGIN success literal.
	RespLoginOK = "LOGIN OK"

	// RespRegisterOK is the bespoke REGISTER success literal.
	RespRegisterOK = "REGISTER OK"

	// RespServerFull is written to a connection refused at the admission
	// ceiling, before the socket is closed.
	RespServerFull = "ERROR: Server full"
)

// Audit outcome reasons. Combined with a verb they form machine-parseable
// tags such as "UPLOAD_FAIL:NoFilename".
const (
	ReasonNoFilename           = "NoFilename"
	ReasonInvalidFilename      = "InvalidFilename"
	ReasonNoSize               = "NoSize"
	ReasonInvalidSize          = "InvalidSize"
	ReasonFileTooLarge         = "FileTooLarge"
	ReasonTransferError        = "TransferError"
	ReasonIOError              = "IOError"
	ReasonFileNotFound         = "FileNotFound"
	ReasonAccessDenied         = "AccessDenied"
	ReasonFileNotFoundOnServer = "FileNotFoundOnServer"
	ReasonNotLoggedIn          = "NotLoggedIn"
	ReasonAlreadyLoggedIn      = "AlreadyLoggedIn"
	ReasonInvalidArgs          = "InvalidArgs"
	ReasonUserNotFound         = "UserNotFound"
	ReasonInvalidPassword      = "InvalidPassword"
	ReasonUsernameExists       = "UsernameExists"
	ReasonNoUsername           = "NoUsername"
	ReasonNoMessage            = "NoMessage"
	ReasonStorageError         = "StorageError"
)

// okTag builds the audit tag for a successful verb, e.g. "UPLOAD_OK: f.txt".
// detail is appended after ": " when non-empty.
func okTag(verb, detail string) string {
	if detail == "" {
		return verb + "_OK"
	}
	return verb + "_OK: " + detail
}

// failTag builds the audit tag for a failed verb, e.g. "UPLOAD_FAIL:NoFilename".
func failTag(verb, reason string) string {
	return verb + "_FAIL:" + reason
}

// parseCommand splits a trimmed input line into an uppercased verb and the
// verbatim argument remainder (which may contain spaces).
func parseCommand(line string) (verb, args string) {
	verb, args, _ = strings.Cut(line, " ")
	return strings.ToUpper(verb), args
}

// validateFilename rejects filenames that are empty, contain path-traversal
// segments, or contain path separators. Called before any filesystem or store
// interaction.
func validateFilename(filename string) string {
	if filename == "" {
		return ReasonNoFilename
	}
	if strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, `/\`) {
		return ReasonInvalidFilename
	}
	return ""
}
