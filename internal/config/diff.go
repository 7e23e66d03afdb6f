package config

import (
	"strings"

	"github.com/google/go-cmp/cmp"
)

// DiffSerialized renders a line-oriented diff between the last accepted
// configuration document and a rejected replacement. The reloader logs it
// at debug level so a broken edit can be pinpointed without opening the
// file.
func DiffSerialized(previous, current []byte) string {
	return cmp.Diff(documentLines(previous), documentLines(current))
}

// documentLines splits a serialized document for diffing. CRLF endings are
// normalized and a single trailing newline does not count as an extra line.
func documentLines(doc []byte) []string {
	if len(doc) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(doc), "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
