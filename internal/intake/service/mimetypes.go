package service

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var allowedMimeTypes = map[string]struct{}{
	// documents
	"application/pdf":                                                         {},
	"application/msword":                                                      {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.oasis.opendocument.text":                                 {},
	"application/rtf":                                                         {},

	// spreadsheets
	"application/vnd.ms-excel":                                          {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/vnd.oasis.opendocument.spreadsheet":                    {},
	"text/csv":                                                          {},

	// presentations
	"application/vnd.ms-powerpoint":                                             {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/vnd.oasis.opendocument.presentation":                           {},

	// text
	"text/plain":    {},
	"text/markdown": {},

	// images
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/heic": {},
	"image/tiff": {},
	"image/bmp":  {},

	// archives
	"application/zip":              {},
	"application/x-zip-compressed": {},
	"application/x-7z-compressed":  {},
	"application/x-rar-compressed": {},
	"application/gzip":             {},
	"application/x-tar":            {},

	// structured data
	"application/json": {},
	"application/xml":  {},
	"text/xml":         {},
}

// textTypes are accepted whenever the bytes are plain text; mimetype does
// not recognise every one of them on its own.
var textTypes = map[string]struct{}{
	"text/plain":       {},
	"text/csv":         {},
	"text/markdown":    {},
	"application/json": {},
	"application/xml":  {},
	"text/xml":         {},
	"application/rtf":  {},
}

// containerOf maps office formats to the archive they are built on. A file
// declared as one of them is accepted when it is detected as exactly that
// container.
var containerOf = map[string]string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "application/zip",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "application/zip",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "application/zip",
	"application/vnd.oasis.opendocument.text":                                   "application/zip",
	"application/vnd.oasis.opendocument.spreadsheet":                            "application/zip",
	"application/vnd.oasis.opendocument.presentation":                           "application/zip",
	"application/msword":                                                        "application/x-ole-storage",
	"application/vnd.ms-excel":                                                  "application/x-ole-storage",
	"application/vnd.ms-powerpoint":                                             "application/x-ole-storage",
}

// mediaType returns the bare, lower-cased media type of an upload. When the
// client sent none it is inferred from the extension, then from the bytes.
func mediaType(declared, filename string, detected *mimetype.MIME) string {
	if declared == "" || declared == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); byExt != "" {
			declared = byExt
		} else if declared == "" {
			declared = detected.String()
		}
	}
	return bareType(declared)
}

func bareType(mt string) string {
	bare, _, err := mime.ParseMediaType(mt)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mt))
	}
	return bare
}

// contentMatches reports whether the detected bytes can be a file of type
// mt: the detected type or one of its parents is mt, the file is text and
// mt is a text format, or mt is an office format and the bytes are its bare
// container.
func contentMatches(mt string, detected *mimetype.MIME) bool {
	text := false
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(mt) {
			return true
		}
		if m.Is("text/plain") {
			text = true
		}
	}
	if _, ok := textTypes[mt]; ok && text {
		return true
	}
	if c, ok := containerOf[mt]; ok && detected.Is(c) {
		return true
	}
	return false
}

func allowedMimeType(mt string) bool {
	_, ok := allowedMimeTypes[mt]
	return ok
}
