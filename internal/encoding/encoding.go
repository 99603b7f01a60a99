// Package encoding provides the binary marshaling helpers shared by the
// control-channel wire types in internal/ctrlmsg. It mirrors the
// io.ReaderFrom/io.WriterTo composition style the rest of this codebase
// uses for wire structures: a type encodes itself by writing its fields
// through WriteTo, and a list of such types is framed with ReadSliceFrom.
package encoding

import (
	"bytes"
	"encoding/binary"
	"io"
	"reflect"
)

// reader wraps an io.Reader to count the bytes consumed through it.
type reader struct {
	io.Reader
	read int64
}

func (r *reader) Read(b []byte) (int, error) {
	n, err := r.Reader.Read(b)
	r.read += int64(n)
	return n, err
}

// ReadWriter describes types capable of both writing their wire
// representation and reading it back.
type ReadWriter interface {
	io.ReaderFrom
	io.WriterTo
}

// WriteTo writes each of v in order, network byte order, into w. Elements
// that implement io.WriterTo serialize themselves; everything else is
// passed to encoding/binary.Write.
func WriteTo(w io.Writer, v ...interface{}) (int64, error) {
	var wbuf bytes.Buffer
	var err error

	for _, elem := range v {
		switch elem := elem.(type) {
		case nil:
			continue
		case io.WriterTo:
			_, err = elem.WriteTo(&wbuf)
		default:
			err = binary.Write(&wbuf, binary.BigEndian, elem)
		}

		if err != nil {
			return 0, err
		}
	}

	return wbuf.WriteTo(w)
}

// ReadFrom reads into each of v in order. Elements that implement
// io.ReaderFrom decode themselves; everything else is decoded with
// encoding/binary.Read.
func ReadFrom(r io.Reader, v ...interface{}) (int64, error) {
	var err error
	rd := &reader{Reader: r}

	for _, elem := range v {
		switch elem := elem.(type) {
		case io.ReaderFrom:
			_, err = elem.ReadFrom(rd)
		default:
			err = binary.Read(rd, binary.BigEndian, elem)
		}

		if err != nil {
			return rd.read, err
		}
	}

	return rd.read, nil
}

// WriteSliceTo writes each element of slice (a []T where *T implements
// io.WriterTo) to w in order, used to frame a download batch of
// flow-mod records.
func WriteSliceTo(w io.Writer, slice interface{}) (int64, error) {
	var n int64
	sliceValue := reflect.ValueOf(slice)

	for i := 0; i < sliceValue.Len(); i++ {
		addr := sliceValue.Index(i).Addr()
		writer := addr.Interface().(io.WriterTo)

		nn, err := writer.WriteTo(w)
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// ReadSliceFrom decodes count elements using rm, appending each to slice
// (a pointer to a []T where *T implements io.ReaderFrom). An io.EOF from
// an element stops decoding early and is reported as a nil error, so
// slice may then hold fewer than count elements.
func ReadSliceFrom(r io.Reader, rm ReaderMaker, count int, slice interface{}) (int64, error) {
	var n int64
	sliceValue := reflect.ValueOf(slice).Elem()

	for i := 0; i < count; i++ {
		item, err := rm.MakeReader()
		if err != nil {
			return n, err
		}

		nn, err := item.ReadFrom(r)
		n += nn
		if err != nil {
			return n, SkipEOF(err)
		}

		elem := reflect.ValueOf(item).Elem()
		sliceValue.Set(reflect.Append(sliceValue, elem))
	}

	return n, nil
}

// ReaderMaker creates new exemplars of io.ReaderFrom, one per decoded
// slice element.
type ReaderMaker interface {
	MakeReader() (io.ReaderFrom, error)
}

// ReaderMakerFunc adapts a function to the ReaderMaker interface.
type ReaderMakerFunc func() (io.ReaderFrom, error)

// MakeReader implements ReaderMaker.
func (fn ReaderMakerFunc) MakeReader() (io.ReaderFrom, error) {
	return fn()
}

// SkipEOF returns nil if err is io.EOF, otherwise it returns err
// unchanged.
func SkipEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}
