package login

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/openkcm/login-gateway/internal/serviceerr"
)

// EncodeState encodes a destination URL into a continuation value.
func EncodeState(destination string) string {
	return base64.StdEncoding.EncodeToString([]byte(destination))
}

// DecodeState decodes a standard base64 continuation value into the destination URL.
// Padding is optional. A '+' that reached us as a space through form decoding is restored.
// The destination becomes a Location header, so control characters are rejected.
func DecodeState(state string) (string, error) {
	if state == "" {
		return "", serviceerr.ErrMissingState
	}

	state = strings.ReplaceAll(state, " ", "+")

	enc := base64.StdEncoding
	if len(state)%4 != 0 {
		enc = base64.RawStdEncoding
	}

	decoded, err := enc.DecodeString(state)
	if err != nil {
		return "", errors.Join(serviceerr.ErrInvalidState, err)
	}

	destination := string(decoded)
	if !httpguts.ValidHeaderFieldValue(destination) {
		return "", fmt.Errorf("%w: destination is not a valid header value", serviceerr.ErrInvalidState)
	}

	return destination, nil
}
