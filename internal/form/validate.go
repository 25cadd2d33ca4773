package form

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

const dateLayout = "2006-01-02"

// Result collects human-readable violations in check order. An empty list
// means the submission passed.
type Result struct {
	Errors []string
}

func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Upload is a validated attachment slot, in schema order. ContentType is
// sniffed from the file bytes, never taken from the client-declared type.
type Upload struct {
	Slot        Slot
	Header      *multipart.FileHeader
	ContentType string
}

// Validator enforces the field and upload constraints of a Schema.
type Validator struct {
	MaxBytes     int64
	AllowedTypes []string
}

// Validate sanitizes the submitted values and runs every check of the schema,
// aggregating all violations rather than stopping at the first. It returns
// the sanitized field map, the validated uploads in slot order, and the
// result. Uploads are only complete when the result is OK.
func (v *Validator) Validate(s Schema, values map[string][]string, files map[string][]*multipart.FileHeader) (map[string]string, []Upload, Result) {
	var res Result

	fields := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		var raw string
		if vs := values[f.Key]; len(vs) > 0 {
			raw = vs[0]
		}
		fields[f.Key] = Sanitize(raw)
	}

	for _, f := range s.Fields {
		v.checkField(f, fields[f.Key], &res)
	}

	if s.DateOrder != nil {
		v.checkDateOrder(*s.DateOrder, fields, &res)
	}

	var uploads []Upload
	for _, slot := range s.Slots {
		if up, ok := v.checkSlot(slot, files[slot.Key], &res); ok {
			uploads = append(uploads, up)
		}
	}

	return fields, uploads, res
}

func (v *Validator) checkField(f Field, value string, res *Result) {
	if value == "" {
		res.add(f.RequiredMessage)
		return
	}
	switch f.Kind {
	case KindDate:
		if _, ok := parseDate(value); !ok {
			res.add(f.InvalidMessage)
		}
	case KindSelect:
		for _, opt := range f.Options {
			if value == opt {
				return
			}
		}
		res.add(f.InvalidMessage)
	}
}

func (v *Validator) checkDateOrder(o DateOrder, fields map[string]string, res *Result) {
	start, okStart := parseDate(fields[o.Start])
	end, okEnd := parseDate(fields[o.End])
	if !okStart || !okEnd {
		return // format violations already reported
	}
	if !end.After(start) {
		res.add(o.Message)
	}
}

// checkSlot runs every upload constraint for one slot: presence, a single
// file per key, readability, size ceiling, and sniffed content type.
func (v *Validator) checkSlot(slot Slot, headers []*multipart.FileHeader, res *Result) (Upload, bool) {
	switch {
	case len(headers) == 0:
		res.add(fmt.Sprintf("%s upload is required and must be a valid image file (max %s)", slot.Name, v.maxSize()))
		return Upload{}, false
	case len(headers) > 1:
		res.add(fmt.Sprintf("%s accepts only a single file", slot.Name))
		return Upload{}, false
	}

	fh := headers[0]
	ok := true

	if fh.Size > v.MaxBytes {
		res.add(fmt.Sprintf("%s exceeds the maximum file size of %s", slot.Name, v.maxSize()))
		ok = false
	}

	contentType, err := sniffContentType(fh)
	if err != nil {
		res.add(fmt.Sprintf("%s upload failed, please try again", slot.Name))
		return Upload{}, false
	}
	if !v.allowed(contentType) {
		res.add(fmt.Sprintf("%s must be a valid image file (JPEG, PNG, GIF, or WebP)", slot.Name))
		ok = false
	}

	if !ok {
		return Upload{}, false
	}
	return Upload{Slot: slot, Header: fh, ContentType: contentType}, true
}

func (v *Validator) allowed(contentType string) bool {
	for _, t := range v.AllowedTypes {
		// normalize the common jpg alias
		if t == "image/jpg" {
			t = "image/jpeg"
		}
		if contentType == t {
			return true
		}
	}
	return false
}

func (v *Validator) maxSize() string {
	return humanize.IBytes(uint64(v.MaxBytes))
}

// sniffContentType determines the content type from the first bytes of the
// file rather than trusting the client-declared header.
func sniffContentType(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

// parseDate accepts only strings that round-trip exactly through the
// YYYY-MM-DD layout, so out-of-range values like 2024-13-40 are rejected.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil || t.Format(dateLayout) != s {
		return time.Time{}, false
	}
	return t, true
}
