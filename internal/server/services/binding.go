package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docshare/internal/codec"
)

var (
	// ErrMalformedBinding means a link decrypted fine but its payload is not
	// a binding this server understands.
	ErrMalformedBinding = errors.New("malformed link binding")
	ErrLinkExpired      = errors.New("link expired")
)

const bindingVersion = 1

// binding ties a file to the subject allowed to redeem the link.
// ExpiresAt is a unix timestamp; zero means the link never expires.
type binding struct {
	Version   int   `cbor:"1,keyasint"`
	FileID    int64 `cbor:"2,keyasint"`
	SubjectID int64 `cbor:"3,keyasint"`
	ExpiresAt int64 `cbor:"4,keyasint,omitempty"`
}

func encodeBinding(b binding) ([]byte, error) {
	b.Version = bindingVersion
	return codec.Marshal(b)
}

func decodeBinding(data []byte) (binding, error) {
	var b binding
	if err := codec.Unmarshal(data, &b); err != nil {
		return binding{}, fmt.Errorf("%w: %w", ErrMalformedBinding, err)
	}
	if b.Version != bindingVersion || b.FileID <= 0 || b.SubjectID <= 0 || b.ExpiresAt < 0 {
		return binding{}, ErrMalformedBinding
	}
	return b, nil
}
