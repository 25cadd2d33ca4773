package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/formrelay/internal/upload"
)

// Message is a composed submission email, ready for the transport. The
// attachment order always matches the slot order of the originating form.
type Message struct {
	Subject     string
	HTMLBody    string
	Attachments []upload.Attachment
}

// newBoundary derives the MIME boundary from a random UUID so it is unique
// per message and cannot collide with submitted content.
func newBoundary() string {
	return "=_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// buildMessage assembles the full RFC 822 message: envelope headers followed
// by a multipart/mixed body, or a PGP/MIME envelope when a public key is
// configured.
func (s *Sender) buildMessage(msg Message) ([]byte, error) {
	if s.cfg.PGPPublicKeyPath != "" {
		return s.buildEncryptedMessage(msg)
	}

	boundary := newBoundary()
	body, err := buildMultipartBody(msg, boundary)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	s.writeEnvelopeHeaders(&buf, msg.Subject)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", boundary)
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// buildEncryptedMessage wraps the composed multipart body in a PGP/MIME
// envelope (RFC 3156). The whole body, attachments included, is encrypted as
// one blob.
func (s *Sender) buildEncryptedMessage(msg Message) ([]byte, error) {
	innerBoundary := newBoundary()
	inner, err := buildMultipartBody(msg, innerBoundary)
	if err != nil {
		return nil, err
	}

	var plain bytes.Buffer
	fmt.Fprintf(&plain, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", innerBoundary)
	plain.Write(inner)

	encrypted, err := encryptPGP(plain.Bytes(), s.cfg.PGPPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("pgp encryption: %w", err)
	}

	var buf bytes.Buffer
	envelope := multipart.NewWriter(&buf)
	if err := envelope.SetBoundary(newBoundary()); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	s.writeEnvelopeHeaders(&out, msg.Subject)
	fmt.Fprintf(&out, "Content-Type: multipart/encrypted; protocol=\"application/pgp-encrypted\"; boundary=%q\r\n\r\n", envelope.Boundary())

	versionHeader := textproto.MIMEHeader{}
	versionHeader.Set("Content-Type", "application/pgp-encrypted")
	versionPart, err := envelope.CreatePart(versionHeader)
	if err != nil {
		return nil, err
	}
	versionPart.Write([]byte("Version: 1\r\n"))

	encHeader := textproto.MIMEHeader{}
	encHeader.Set("Content-Type", "application/octet-stream")
	encPart, err := envelope.CreatePart(encHeader)
	if err != nil {
		return nil, err
	}
	encPart.Write(encrypted)

	envelope.Close()
	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

func (s *Sender) writeEnvelopeHeaders(buf *bytes.Buffer, subject string) {
	fmt.Fprintf(buf, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail)
	fmt.Fprintf(buf, "To: %s <%s>\r\n", s.cfg.ToName, s.cfg.ToEmail)
	fmt.Fprintf(buf, "Reply-To: %s\r\n", s.cfg.FromEmail)
	fmt.Fprintf(buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("X-Mailer: formrelay\r\n")
}

// buildMultipartBody writes the boundary-delimited body: one HTML part
// followed by one base64 part per attachment, closed by the final boundary
// marker.
func buildMultipartBody(msg Message, boundary string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.SetBoundary(boundary); err != nil {
		return nil, fmt.Errorf("setting boundary: %w", err)
	}

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=UTF-8")
	htmlHeader.Set("Content-Transfer-Encoding", "7bit")
	htmlPart, err := writer.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	htmlPart.Write([]byte(msg.HTMLBody))

	for _, att := range msg.Attachments {
		data, err := os.ReadFile(att.Path)
		if err != nil {
			return nil, fmt.Errorf("reading attachment %s: %w", att.Filename, err)
		}

		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", fmt.Sprintf("%s; name=%q", att.ContentType, att.Filename))
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))

		attPart, err := writer.CreatePart(attHeader)
		if err != nil {
			return nil, err
		}
		writeBase64(attPart, data)
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 encodes data in 76-character lines per RFC 2045.
func writeBase64(w io.Writer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		w.Write([]byte(encoded[i:end] + "\r\n"))
	}
}
