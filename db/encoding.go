// Copyright 2026 The jpdict Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package db

import (
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"

	"github.com/pkg/errors"
)

var errInvalidSize = fmt.Errorf("invalid size")

// writeLen writes a section length prefix.
func writeLen(w io.Writer, n int) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	_, err := w.Write(b[:])
	return err
}

// writeSection writes a length-prefixed packed array of raw records. The
// records consist solely of U32/I32 fields, so their memory image is the
// wire format and the slice is written as one contiguous byte range.
func writeSection[T any](w io.Writer, items []T) error {
	if err := writeLen(w, len(items)); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(items[0]))
	b := unsafe.Slice((*byte)(unsafe.Pointer(&items[0])), len(items)*size)
	_, err := w.Write(b)
	return err
}

// readSection reinterprets the next length-prefixed section of data as a
// typed slice over the input bytes and returns the remainder. No bytes are
// copied; the returned slice is valid for as long as data is.
func readSection[T any](data []byte) ([]T, []byte, error) {
	if len(data) < 4 {
		return nil, nil, errors.Wrap(errInvalidSize, "section length")
	}
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]

	var zero T
	total := n * int(unsafe.Sizeof(zero))
	if len(data) < total {
		return nil, nil, errors.Wrapf(errInvalidSize, "section of %d records", n)
	}
	if n == 0 {
		return nil, data, nil
	}
	s := unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
	return s, data[total:], nil
}

// yoloString presents b as a string without copying. The bytes must not be
// mutated while the string is referenced.
func yoloString(b []byte) string {
	return *((*string)(unsafe.Pointer(&b)))
}
