package textcodec

import (
	"errors"
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		charset string
		wantErr error
	}{
		{name: "empty defaults to utf-8", charset: ""},
		{name: "utf-8", charset: "utf-8"},
		{name: "utf8 alias", charset: "UTF8"},
		{name: "iso-8859-1", charset: "iso-8859-1"},
		{name: "latin1 alias", charset: "latin1"},
		{name: "windows-1252", charset: "windows-1252"},
		{name: "shift_jis", charset: "shift_jis"},
		{name: "unknown", charset: "no-such-charset", wantErr: ErrUnknownCharset},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			enc, err := Lookup(tc.charset)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enc == nil {
				t.Fatal("nil encoding")
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	latin1, err := Lookup("iso-8859-1")
	if err != nil {
		t.Fatalf("failed to look up latin1: %v", err)
	}

	cases := []struct {
		name    string
		enc     encoding.Encoding
		policy  Policy
		input   []byte
		want    string
		wantErr error
	}{
		{
			name:   "valid utf-8 strict",
			enc:    unicode.UTF8,
			policy: Strict,
			input:  []byte("héllo"),
			want:   "héllo",
		},
		{
			name:    "invalid utf-8 strict",
			enc:     unicode.UTF8,
			policy:  Strict,
			input:   []byte("caf\xff"),
			wantErr: ErrInvalidBytes,
		},
		{
			name:   "invalid utf-8 ignore",
			enc:    unicode.UTF8,
			policy: Ignore,
			input:  []byte("caf\xff"),
			want:   "caf",
		},
		{
			name:   "invalid utf-8 replace",
			enc:    unicode.UTF8,
			policy: Replace,
			input:  []byte("caf\xff"),
			want:   "caf�",
		},
		{
			name:   "nil encoding defaults to utf-8",
			enc:    nil,
			policy: Strict,
			input:  []byte("plain"),
			want:   "plain",
		},
		{
			name:   "latin1 strict",
			enc:    latin1,
			policy: Strict,
			input:  []byte("caf\xe9"),
			want:   "café",
		},
		{
			name:   "empty input",
			enc:    unicode.UTF8,
			policy: Strict,
			input:  nil,
			want:   "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tc.enc, tc.policy, tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Decode() = %q, want %q", got, tc.want)
			}
		})
	}
}
