// Package textcodec resolves charset names from Content-Type parameters
// and decodes form field bytes into UTF-8 strings under one of three error
// policies, mirroring the strict/ignore/replace trichotomy of the
// encoding_errors request option.
package textcodec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Policy selects how undecodable byte sequences are handled.
type Policy string

const (
	// Strict fails the decode on any invalid input.
	Strict Policy = "strict"
	// Ignore drops invalid sequences from the output.
	Ignore Policy = "ignore"
	// Replace substitutes U+FFFD for invalid sequences.
	Replace Policy = "replace"
)

var (
	// ErrUnknownCharset is returned by Lookup for an unresolvable name.
	ErrUnknownCharset = errors.New("unknown charset")
	// ErrInvalidBytes is returned by Decode under the Strict policy.
	ErrInvalidBytes = errors.New("invalid bytes for charset")
)

// Lookup resolves a charset name against the IANA MIME registry, falling
// back to the WHATWG HTML index for its generous alias set. An empty name
// resolves to UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf-8" || name == "utf8" {
		return unicode.UTF8, nil
	}
	if enc, err := ianaindex.MIME.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Decode converts b from enc to a UTF-8 string under the given policy.
func Decode(enc encoding.Encoding, policy Policy, b []byte) (string, error) {
	if enc == nil || enc == unicode.UTF8 {
		return decodeUTF8(policy, b)
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		if policy == Strict {
			return "", fmt.Errorf("%w: %v", ErrInvalidBytes, err)
		}
		out = []byte(strings.ToValidUTF8(string(out), replacement(policy)))
	}

	s := string(out)
	switch policy {
	case Strict:
		// x/text decoders substitute U+FFFD instead of failing, so any
		// replacement rune in the output marks invalid input. A source that
		// legitimately encodes U+FFFD is misreported; accepted trade-off.
		if strings.ContainsRune(s, utf8.RuneError) {
			return "", ErrInvalidBytes
		}
	case Ignore:
		// Same U+FFFD ambiguity as above: a replacement rune the source
		// legitimately encoded is dropped along with invalid input.
		s = strings.Map(func(r rune) rune {
			if r == utf8.RuneError {
				return -1
			}
			return r
		}, s)
	}
	return s, nil
}

func decodeUTF8(policy Policy, b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	switch policy {
	case Ignore, Replace:
		return strings.ToValidUTF8(string(b), replacement(policy)), nil
	default:
		return "", ErrInvalidBytes
	}
}

func replacement(policy Policy) string {
	if policy == Ignore {
		return ""
	}
	return string(utf8.RuneError)
}
