package email

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// EncryptionReady returns nil when the configured PGP public key can be read
// and parsed, or an error describing what is wrong. With no key configured,
// messages go out unencrypted and this reports an error for diagnostics.
func (s *Sender) EncryptionReady() error {
	if s.cfg.PGPPublicKeyPath == "" {
		return fmt.Errorf("no PGP public key configured")
	}
	keyData, err := os.ReadFile(s.cfg.PGPPublicKeyPath)
	if err != nil {
		return fmt.Errorf("cannot read PGP public key at %s: %w", s.cfg.PGPPublicKeyPath, err)
	}
	if _, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(keyData)); err != nil {
		return fmt.Errorf("cannot parse PGP public key at %s: %w", s.cfg.PGPPublicKeyPath, err)
	}
	return nil
}

// encryptPGP encrypts plaintext to the public key at keyPath and returns the
// armored message.
func encryptPGP(plaintext []byte, keyPath string) ([]byte, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(keyData))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}

	var buf bytes.Buffer
	armorWriter, err := armor.Encode(&buf, "PGP MESSAGE", nil)
	if err != nil {
		return nil, fmt.Errorf("creating armor writer: %w", err)
	}

	encWriter, err := openpgp.Encrypt(armorWriter, entities, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating encrypt writer: %w", err)
	}
	if _, err := encWriter.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext: %w", err)
	}
	encWriter.Close()
	armorWriter.Close()

	return buf.Bytes(), nil
}
