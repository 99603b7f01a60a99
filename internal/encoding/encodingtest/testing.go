// Package encodingtest provides a small marshal/unmarshal test harness
// for the wire types in internal/ctrlmsg, mirroring the round-trip checks
// the teacher runs against its own OpenFlow structures.
package encodingtest

import (
	"bytes"
	"encoding/gob"
	"io"
	"testing"
)

// M defines the marshaling testing type.
type M struct {
	Writer io.WriterTo
	Bytes  []byte
}

// RunM validates that each passed marshaler produces the exact sequence
// of bytes specified.
func RunM(t *testing.T, tests []M) {
	t.Helper()

	for _, test := range tests {
		var buf bytes.Buffer
		nn, err := test.Writer.WriteTo(&buf)

		if err != nil {
			t.Fatalf("failed to marshal the given packet: `%x`, got error: %s", test.Bytes, err)
		}

		if nn != int64(len(test.Bytes)) {
			t.Fatalf("invalid length returned on attempt to marshal:\n`%x`: %d,\nexpected:\n`%x`: %d\n",
				buf.Bytes(), nn, test.Bytes, len(test.Bytes))
		}

		if !bytes.Equal(test.Bytes, buf.Bytes()) {
			t.Fatalf("the marshaled result is not equal to the\nexpected:\n`%x`,\ngot instead:\n`%x`",
				test.Bytes, buf.Bytes())
		}
	}
}

// U defines the unmarshaling testing type.
type U struct {
	Reader io.ReaderFrom
	Bytes  []byte
}

// RunU validates that each passed reader produces exactly the expected
// object after unmarshaling the given bytes.
func RunU(t *testing.T, tests []U) {
	t.Helper()

	for _, test := range tests {
		var before bytes.Buffer
		if err := gob.NewEncoder(&before).Encode(test.Reader); err != nil {
			t.Fatalf("failed to encode Go object: `%v`: %s", test.Reader, err)
		}

		buf := bytes.NewBuffer(test.Bytes)
		nn, err := test.Reader.ReadFrom(buf)

		if err != nil {
			t.Fatalf("failed to unmarshal the given packet: `%x`, got error: %s", test.Bytes, err)
		}

		if nn != int64(len(test.Bytes)) {
			t.Fatalf("invalid length returned on attempt to unmarshal: `%x`: %d, expected %d",
				test.Bytes, nn, len(test.Bytes))
		}

		var after bytes.Buffer
		if err := gob.NewEncoder(&after).Encode(test.Reader); err != nil {
			t.Fatalf("failed to encode Go object: `%v`: %s", test.Reader, err)
		}

		if !bytes.Equal(before.Bytes(), after.Bytes()) {
			t.Fatalf("the unmarshaled result is not equal to the expected one:\n`%x`,\ngot instead:\n`%x`\n%v",
				before.Bytes(), after.Bytes(), test.Reader)
		}
	}
}

// MU defines the marshaling/unmarshaling testing type.
type MU struct {
	ReadWriter interface {
		io.ReaderFrom
		io.WriterTo
	}

	Bytes []byte
}

// RunMU executes both the marshaling and unmarshaling test for the given
// sequence of tests.
func RunMU(t *testing.T, tests []MU) {
	t.Helper()

	for _, test := range tests {
		RunM(t, []M{{test.ReadWriter, test.Bytes}})
		RunU(t, []U{{test.ReadWriter, test.Bytes}})
	}
}
