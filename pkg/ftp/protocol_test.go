package ftp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line     string
		wantVerb string
		wantArgs string
	}{
		{"LOGIN alice pw1", "LOGIN", "alice pw1"},
		{"login alice pw1", "LOGIN", "alice pw1"},
		{"LIST", "LIST", ""},
		{"ECHO hello world", "ECHO", "hello world"},
		{"UPLOAD file with spaces.txt", "UPLOAD", "file with spaces.txt"},
	}

	for _, tt := range tests {
		verb, args := parseCommand(tt.line)
		assert.Equal(t, tt.wantVerb, verb, "verb for %q", tt.line)
		assert.Equal(t, tt.wantArgs, args, "args for %q", tt.line)
	}
}

func TestValidateFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ReasonNoFilename, validateFilename(""))

	for _, name := range []string{"../x", "..", "a..b", "a/b", `a\b`, "/etc/passwd"} {
		assert.Equal(t, ReasonInvalidFilename, validateFilename(name), "filename %q", name)
	}

	for _, name := range []string{"f.txt", "report_alice.csv", "no extension", "UPPER.TXT"} {
		assert.Empty(t, validateFilename(name), "filename %q", name)
	}
}

func TestAuditTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UPLOAD_OK: f.txt", okTag(VerbUpload, "f.txt"))
	assert.Equal(t, "LOGOUT_OK", okTag(VerbLogout, ""))
	assert.Equal(t, "UPLOAD_FAIL:NoFilename", failTag(VerbUpload, ReasonNoFilename))
	assert.Equal(t, "LOGIN_FAIL:InvalidPassword", failTag(VerbLogin, ReasonInvalidPassword))
}

func TestActorName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown", Identity{}.ActorName())
	assert.Equal(t, "alice", Identity{Authenticated: true, Username: "alice"}.ActorName())
}
