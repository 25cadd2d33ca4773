package email

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/formrelay/internal/upload"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSender() *Sender {
	return NewSender(Config{
		FromEmail: "noreply@example.org",
		FromName:  "Driver License Registration System",
		ToEmail:   "recipient@example.org",
		ToName:    "Contact Form Handler",
	}, discardLogger())
}

// writeAttachment materializes bytes into a temp file and returns the
// attachment the composer would receive.
func writeAttachment(t *testing.T, name string, data []byte, contentType string) upload.Attachment {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stored_"+name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing attachment fixture: %v", err)
	}
	return upload.Attachment{Path: path, Filename: name, ContentType: contentType}
}

func testMessage(t *testing.T) (Message, [][]byte) {
	front := []byte("front-image-bytes")
	back := []byte("back-image-bytes")
	msg := Message{
		Subject:  "New Driver License Registration",
		HTMLBody: "<html><body><h2>New Driver License Registration</h2></body></html>",
		Attachments: []upload.Attachment{
			writeAttachment(t, "front.jpg", front, "image/jpeg"),
			writeAttachment(t, "back.png", back, "image/png"),
		},
	}
	return msg, [][]byte{front, back}
}

func TestBuildMessageEnvelopeHeaders(t *testing.T) {
	msg, _ := testMessage(t)

	raw, err := newTestSender().buildMessage(msg)
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parsing built message: %v", err)
	}

	cases := []struct {
		header string
		want   string
	}{
		{"From", "Driver License Registration System <noreply@example.org>"},
		{"To", "Contact Form Handler <recipient@example.org>"},
		{"Reply-To", "noreply@example.org"},
		{"Subject", "New Driver License Registration"},
		{"MIME-Version", "1.0"},
		{"X-Mailer", "formrelay"},
	}
	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			if got := parsed.Header.Get(tc.header); got != tc.want {
				t.Errorf("%s: want %q, got %q", tc.header, tc.want, got)
			}
		})
	}

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parsing content type: %v", err)
	}
	if mediaType != "multipart/mixed" {
		t.Errorf("expected multipart/mixed, got %q", mediaType)
	}
	if params["boundary"] == "" {
		t.Error("expected an explicit boundary parameter")
	}
}

func TestBuildMessagePartsRoundTrip(t *testing.T) {
	msg, original := testMessage(t)

	raw, err := newTestSender().buildMessage(msg)
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parsing built message: %v", err)
	}
	_, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parsing content type: %v", err)
	}

	mr := multipart.NewReader(parsed.Body, params["boundary"])

	// Part 1: the HTML body, 7bit.
	part, err := mr.NextPart()
	if err != nil {
		t.Fatalf("reading html part: %v", err)
	}
	if ct := part.Header.Get("Content-Type"); ct != "text/html; charset=UTF-8" {
		t.Errorf("html part content type: %q", ct)
	}
	if enc := part.Header.Get("Content-Transfer-Encoding"); enc != "7bit" {
		t.Errorf("html part transfer encoding: %q", enc)
	}
	body, _ := io.ReadAll(part)
	if !strings.Contains(string(body), "New Driver License Registration") {
		t.Errorf("html part missing body content: %q", body)
	}

	// Parts 2..n: one base64 attachment per slot, in order, named after the
	// original upload.
	wantNames := []string{"front.jpg", "back.png"}
	wantTypes := []string{"image/jpeg", "image/png"}
	for i := range wantNames {
		part, err = mr.NextPart()
		if err != nil {
			t.Fatalf("reading attachment part %d: %v", i, err)
		}
		if got := part.FileName(); got != wantNames[i] {
			t.Errorf("attachment %d filename: want %q, got %q", i, wantNames[i], got)
		}
		if ct := part.Header.Get("Content-Type"); !strings.HasPrefix(ct, wantTypes[i]) {
			t.Errorf("attachment %d content type: want %q, got %q", i, wantTypes[i], ct)
		}
		if enc := part.Header.Get("Content-Transfer-Encoding"); enc != "base64" {
			t.Errorf("attachment %d transfer encoding: %q", i, enc)
		}

		encoded, _ := io.ReadAll(part)
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
		if err != nil {
			t.Fatalf("decoding attachment %d: %v", i, err)
		}
		if !bytes.Equal(decoded, original[i]) {
			t.Errorf("attachment %d bytes mismatch", i)
		}
	}

	if _, err := mr.NextPart(); err != io.EOF {
		t.Errorf("expected exactly 3 parts, got more (err=%v)", err)
	}
}

func TestBoundaryIsUniquePerMessage(t *testing.T) {
	msg, _ := testMessage(t)
	s := newTestSender()

	boundaries := make(map[string]bool)
	for i := 0; i < 3; i++ {
		raw, err := s.buildMessage(msg)
		if err != nil {
			t.Fatalf("buildMessage: %v", err)
		}
		parsed, _ := mail.ReadMessage(bytes.NewReader(raw))
		_, params, _ := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
		if boundaries[params["boundary"]] {
			t.Fatalf("boundary %q repeated across messages", params["boundary"])
		}
		boundaries[params["boundary"]] = true
	}
}

func TestBuildMessageMissingAttachmentFile(t *testing.T) {
	msg := Message{
		Subject:  "x",
		HTMLBody: "<html></html>",
		Attachments: []upload.Attachment{
			{Path: filepath.Join(t.TempDir(), "gone.jpg"), Filename: "gone.jpg", ContentType: "image/jpeg"},
		},
	}

	if _, err := newTestSender().buildMessage(msg); err == nil {
		t.Fatal("expected an error for a missing attachment file")
	}
}

func TestRenderBody(t *testing.T) {
	body := RenderBody("New Driver License Registration",
		[]BodyField{
			{Label: "Full Name", Value: "Jane Doe"},
			{Label: "Department", Value: "IT"},
		},
		[]BodyField{
			{Label: "Front Side", Value: "front.jpg"},
			{Label: "Back Side", Value: "back.png"},
		})

	for _, want := range []string{
		"<h2>New Driver License Registration</h2>",
		"<div class='label'>Full Name:</div>",
		"<div class='value'>Jane Doe</div>",
		"<li>Front Side: front.jpg</li>",
		"<li>Back Side: back.png</li>",
		"Received on:",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
