// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// littleEndian is a convenience variable since binary.LittleEndian is quite
// long.
var littleEndian = binary.LittleEndian

// shortRead reads size bytes (at most 4) from r and hands them to the callback.
// Both a clean EOF and a partial read are reported as a short frame since
// every field of a frame is mandatory.
func shortRead(r io.Reader, op string, field string, size int, cb func(p [4]byte)) error {
	var data [4]byte
	n, err := io.ReadFull(r, data[:size])
	if err != nil {
		str := fmt.Sprintf("frame ended while reading %s [read %d of %d "+
			"bytes]", field, n, size)
		return messageError(op, ErrShortFrame, str)
	}
	cb(data)
	return nil
}

// readUint8 reads a single byte field and stores it to *value.
func readUint8(r io.Reader, op, field string, value *uint8) error {
	return shortRead(r, op, field, 1, func(p [4]byte) {
		*value = p[0]
	})
}

// readUint32LE reads the little endian encoding of a uint32 field and stores
// it to *value.
func readUint32LE(r io.Reader, op, field string, value *uint32) error {
	return shortRead(r, op, field, 4, func(p [4]byte) {
		*value = littleEndian.Uint32(p[:])
	})
}

// shortWrite writes the first size bytes of the buffer returned by the
// callback to w.  Writes to a *bytes.Buffer, the common case when building a
// frame, append directly to its existing capacity.
func shortWrite(w io.Writer, cb func() (data [4]byte, size int)) error {
	data, size := cb()

	if buf, ok := w.(*bytes.Buffer); ok {
		buf.Write(data[:size])
		return nil
	}
	_, err := w.Write(data[:size])
	return err
}

// writeUint8 writes the byte value to the writer.
func writeUint8(w io.Writer, value uint8) error {
	return shortWrite(w, func() (buf [4]byte, size int) {
		buf[0] = value
		return buf, 1
	})
}

// writeUint32LE writes the little endian encoding of value to the writer.
func writeUint32LE(w io.Writer, value uint32) error {
	return shortWrite(w, func() (buf [4]byte, size int) {
		littleEndian.PutUint32(buf[:], value)
		return buf, 4
	})
}
