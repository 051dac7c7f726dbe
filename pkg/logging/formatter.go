package logging

import (
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
)

const (
	sourceField = "source"
	redacted    = "[redacted]"
)

// CredentialFields are never written out in clear text.
var CredentialFields = []string{"token", "secret", "apiSecret", "password"}

// SourceFormatter writes the caller as "pkg/file.go:line" and masks the
// Redact fields, then hands the entry to Underlying. The caller's entry is
// left untouched.
type SourceFormatter struct {
	Underlying logrus.Formatter
	Redact     []string
	// AddSpace appends an empty line after each entry.
	AddSpace bool
}

func (f *SourceFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	data := make(logrus.Fields, len(entry.Data)+1)
	for k, v := range entry.Data {
		data[k] = v
	}
	for _, k := range f.Redact {
		if _, ok := data[k]; ok {
			data[k] = redacted
		}
	}
	if entry.HasCaller() {
		data[sourceField] = callerSource(entry.Caller.File, entry.Caller.Line)
	}

	e := *entry
	e.Data = data
	formatted, err := f.Underlying.Format(&e)
	if err != nil {
		return nil, err
	}
	if f.AddSpace {
		return append(formatted, '\n'), nil
	}
	return formatted, nil
}

func callerSource(file string, line int) string {
	short := filepath.Base(file)
	if dir := filepath.Base(filepath.Dir(file)); dir != "." && dir != string(filepath.Separator) {
		short = dir + "/" + short
	}
	return short + ":" + strconv.Itoa(line)
}
