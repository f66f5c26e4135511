// Package json wraps goccy/go-json with the settings colkit uses for data
// files: numbers decode as json.Number so integers survive, and encoders
// never escape HTML.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

// Number is a decoded JSON number literal
type Number = gojson.Number

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// Marshal encodes v
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal decodes data into v
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// NewDecoder returns a decoder that keeps numbers as Number
func NewDecoder(r io.Reader) *gojson.Decoder {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// StreamingEncoder writes values one at a time, either as a JSON array or
// as newline-delimited JSON. Each value is encoded in full before anything
// reaches the writer.
type StreamingEncoder struct {
	writer  io.Writer
	isArray bool
	indent  string
	count   int
	err     error
}

// NewStreamingEncoder creates a streaming encoder over w
func NewStreamingEncoder(w io.Writer, isArray bool) *StreamingEncoder {
	return &StreamingEncoder{writer: w, isArray: isArray}
}

// SetIndent pretty prints each value with indent
func (se *StreamingEncoder) SetIndent(indent string) {
	se.indent = indent
}

// Encode writes a single value
func (se *StreamingEncoder) Encode(v interface{}) error {
	if se.err != nil {
		return se.err
	}

	buf := getBuffer()
	defer putBuffer(buf)

	switch {
	case se.isArray && se.count == 0:
		buf.WriteByte('[')
	case se.isArray:
		buf.WriteByte(',')
	}
	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if se.indent != "" {
		enc.SetIndent("", se.indent)
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	if se.isArray {
		// Encoder terminates every value with a newline
		buf.Truncate(buf.Len() - 1)
	}

	if _, se.err = se.writer.Write(buf.Bytes()); se.err != nil {
		return se.err
	}
	se.count++
	return nil
}

// Count returns the number of values written
func (se *StreamingEncoder) Count() int { return se.count }

// Close terminates an array. It does not close the writer.
func (se *StreamingEncoder) Close() error {
	if se.err != nil || !se.isArray {
		return se.err
	}
	end := "]\n"
	if se.count == 0 {
		end = "[]\n"
	}
	_, se.err = io.WriteString(se.writer, end)
	return se.err
}
