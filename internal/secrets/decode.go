package secrets

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"
)

// Payload is the decoded content of a secret.
type Payload map[string]any

// DecodePayload turns a raw store response into a Payload. The binary form is
// expected to hold the base64 encoding of the JSON document.
func DecodePayload(secretID string, raw RawSecret) (Payload, error) {
	var text []byte
	switch {
	case raw.Text != nil:
		text = []byte(*raw.Text)
	case raw.Binary != nil:
		decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(raw.Binary)))
		if err != nil {
			return nil, &RetrievalError{SecretID: secretID, Kind: ErrMalformedPayload, Cause: err}
		}
		if !utf8.Valid(decoded) {
			return nil, &RetrievalError{SecretID: secretID, Kind: ErrMalformedPayload, Cause: errors.New("binary payload is not UTF-8 text")}
		}
		text = decoded
	default:
		return nil, &RetrievalError{SecretID: secretID, Kind: ErrNoPayload}
	}

	// Numbers stay json.Number so large integers survive unchanged.
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, &RetrievalError{SecretID: secretID, Kind: ErrMalformedPayload, Cause: err}
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, &RetrievalError{SecretID: secretID, Kind: ErrMalformedPayload, Cause: errors.New("trailing data after JSON document")}
	}

	object, ok := decoded.(map[string]any)
	if !ok {
		return nil, &RetrievalError{SecretID: secretID, Kind: ErrMalformedPayload, Cause: errors.New("payload is not an object")}
	}
	return Payload(object), nil
}
