//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseDocumentID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error. Trust boundary
// functions must handle arbitrary input safely.
func FuzzParseDocumentID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE documents;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseDocumentID(input)

		// Either valid ID or error, never both.
		if err == nil {
			roundTrip, err2 := ParseDocumentID(id.String())
			if err2 != nil {
				t.Errorf("Valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("Round-trip changed ID value")
			}
		}

		// Non-UTF8 input must be rejected.
		if !utf8.ValidString(input) && err == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAddress tests that address parsing never panics and that every
// accepted address is already in canonical form.
func FuzzParseAddress(f *testing.F) {
	f.Add("")
	f.Add("0x71c7656ec7ab88b098defb751b7401b5f6d8976f")
	f.Add("0x71C7656EC7ab88b098defB751B7401B5f6d8976F")
	f.Add("71c7656ec7ab88b098defb751b7401b5f6d8976f")
	f.Add("0x123")
	f.Add("0xZZc7656ec7ab88b098defb751b7401b5f6d8976f")
	f.Add(string([]byte{0xff, 0xfe}))

	f.Fuzz(func(t *testing.T, input string) {
		addr, err := ParseAddress(input)
		if err != nil {
			return
		}

		// Accepted addresses must round-trip unchanged.
		roundTrip, err2 := ParseAddress(addr.String())
		if err2 != nil {
			t.Errorf("canonical address failed round-trip: %v", err2)
		}
		if roundTrip != addr {
			t.Error("round-trip changed address value")
		}
	})
}
