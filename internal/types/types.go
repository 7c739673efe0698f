// Package types implements pgwire's field-type registry (spec component
// C11): the domain types a caller's record shape can declare a column as,
// each with a stable in-memory representation and text/binary codecs.
//
// Every domain type implements TextScanner and, where PostgreSQL defines a
// binary wire form pgwire supports, BinaryScanner. Parameter encoding uses
// the symmetric TextFormatter/BinaryFormatter pair. A type that only
// implements the text pair is still fully usable on the Simple query driver
// and on Extended query results that happen to request text format; the
// Extended driver (C7) always requests binary results, so types without a
// BinaryScanner are not usable as Extended result columns — this is called
// out per type below where it applies.
package types

import "fmt"

// TextScanner decodes a column's text-format wire payload into the receiver.
type TextScanner interface {
	ScanText(src []byte) error
}

// BinaryScanner decodes a column's binary-format wire payload into the receiver.
type BinaryScanner interface {
	ScanBinary(src []byte) error
}

// TextFormatter renders the receiver as a text-format parameter value.
type TextFormatter interface {
	FormatText() ([]byte, error)
}

// BinaryFormatter renders the receiver as a binary-format parameter value.
type BinaryFormatter interface {
	FormatBinary() ([]byte, error)
}

// ErrBinaryUnsupported is returned by ScanBinary implementations that only
// support the text wire format.
var ErrBinaryUnsupported = fmt.Errorf("types: binary format not supported for this type")

// SmallSerial, Serial, and BigSerial mark a decoder field as the underlying
// int2/int4/int8 of a SERIAL column. They carry no distinct wire
// representation — PostgreSQL sends plain integers — but the decoder
// refuses to bind them to an optional (pointer) field, since a serial
// column is never meaningfully nullable.
type SmallSerial int16
type Serial int32
type BigSerial int64
