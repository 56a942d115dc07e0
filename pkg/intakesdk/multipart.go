package intakesdk

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// form accumulates a multipart body in memory so it can be resent on retry.
type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) {
	if f.err != nil || value == "" {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *form) file(field string, file File) {
	if f.err != nil {
		return
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, escapeQuotes(file.Name)))
	mt := file.MimeType
	if mt == "" {
		mt = "application/octet-stream"
	}
	h.Set("Content-Type", mt)

	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(file.Data)
}

// finish closes the writer and returns the body with its content type.
func (f *form) finish() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("failed to build multipart body: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	return f.buf.Bytes(), f.w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
