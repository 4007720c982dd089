/*
 Supplier and acceptor of program lines
*/

package strings_storage

import (
	"io"
	"strings"
)

type StringsStorage interface {
	Supplier
	Consumer
}

type Supplier interface {
	String() string
	Len() int
}

type Consumer interface {
	Accept(string)
}

// Storage keeps lines in the order they were accepted and hands them out one
// by one.
type Storage struct {
	index   int
	strings []string
}

func NewStorage() *Storage {
	return &Storage{strings: make([]string, 0)}
}

// String returns the next line, "" when all lines have been read.
func (storage *Storage) String() string {
	if storage.index >= len(storage.strings) {
		return ""
	}
	storage.index++
	return storage.strings[storage.index-1]
}

// empty strings are discarded
func (storage *Storage) Accept(s string) {
	if len(s) > 0 {
		storage.strings = append(storage.strings, s)
	}
}

func (storage *Storage) Len() int {
	return len(storage.strings)
}

func (storage *Storage) ResetPos() {
	storage.index = 0
}

func (storage *Storage) Empty() {
	storage.index = 0
	storage.strings = storage.strings[:0]
}

func (storage *Storage) PeekPos() int {
	return storage.index
}

func (storage *Storage) ToArray() []string {
	retVal := make([]string, len(storage.strings))
	copy(retVal, storage.strings)
	return retVal
}

// WriteTo writes every line followed by a newline. The read position is not
// affected.
func (storage *Storage) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	for _, s := range storage.strings {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
