package copyin

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vvka-141/pgbulk/internal/typemap"
)

// binary COPY signature, flags and header extension length
var copyHeader = []byte{
	'P', 'G', 'C', 'O', 'P', 'Y', '\n', 0xff, '\r', '\n', 0,
	0, 0, 0, 0,
	0, 0, 0, 0,
}

var errRowNotStarted = errors.New("field written before StartRow")

// StreamWriter encodes rows into the PostgreSQL binary COPY format.
// It only builds bytes; callers decide when to hand them to the server.
type StreamWriter struct {
	typeMap  *pgtype.Map
	buf      []byte
	rowStart int
	fields   int
	rows     int64
	finished bool
}

// NewStreamWriter returns a writer whose buffer already holds the stream header.
func NewStreamWriter(typeMap *pgtype.Map) *StreamWriter {
	buf := make([]byte, 0, 4096)
	buf = append(buf, copyHeader...)
	return &StreamWriter{typeMap: typeMap, buf: buf, rowStart: -1}
}

// StartRow closes the current row, if any, and opens a new one.
func (w *StreamWriter) StartRow() error {
	if w.finished {
		return errors.New("stream already finished")
	}
	w.endRow()
	w.rowStart = len(w.buf)
	w.buf = binary.BigEndian.AppendUint16(w.buf, 0)
	w.fields = 0
	w.rows++
	return nil
}

// WriteNull appends a NULL field.
func (w *StreamWriter) WriteNull() error {
	if w.rowStart < 0 {
		return errRowNotStarted
	}
	w.buf = binary.BigEndian.AppendUint32(w.buf, 0xffffffff)
	w.fields++
	return nil
}

// Write appends value encoded as the type with the given OID.
func (w *StreamWriter) Write(value any, oid uint32) error {
	if w.rowStart < 0 {
		return errRowNotStarted
	}
	buf, err := w.encode(w.buf, oid, value)
	if err != nil {
		return err
	}
	w.buf = buf
	w.fields++
	return nil
}

// WriteAs appends value encoded as the SQL type dataTypeName.
func (w *StreamWriter) WriteAs(value any, dataTypeName string) error {
	name := typemap.NormalizeTypeName(dataTypeName)
	typ, ok := w.typeMap.TypeForName(name)
	if !ok {
		return fmt.Errorf("unknown column type %q", dataTypeName)
	}
	return w.Write(value, typ.OID)
}

// Finish closes the last row and appends the stream trailer.
func (w *StreamWriter) Finish() {
	if w.finished {
		return
	}
	w.endRow()
	w.buf = binary.BigEndian.AppendUint16(w.buf, 0xffff)
	w.finished = true
}

// Bytes returns the bytes buffered since the last Reset.
func (w *StreamWriter) Bytes() []byte {
	return w.buf
}

// Len returns the number of buffered bytes.
func (w *StreamWriter) Len() int {
	return len(w.buf)
}

// Reset drops buffered bytes. The current row must have been closed, either by
// StartRow or Finish, since its field count is patched in place.
func (w *StreamWriter) Reset() {
	w.buf = w.buf[:0]
	w.rowStart = -1
}

// Rows returns the number of rows started.
func (w *StreamWriter) Rows() int64 {
	return w.rows
}

// EndRow patches the current row's field count so the buffer can be flushed.
func (w *StreamWriter) EndRow() {
	w.endRow()
}

func (w *StreamWriter) endRow() {
	if w.rowStart < 0 {
		return
	}
	binary.BigEndian.PutUint16(w.buf[w.rowStart:], uint16(w.fields))
	w.rowStart = -1
}

// encode appends a length-prefixed field. A value the codec reports as NULL
// is written with length -1.
func (w *StreamWriter) encode(buf []byte, oid uint32, value any) ([]byte, error) {
	sp := len(buf)
	buf = binary.BigEndian.AppendUint32(buf, 0xffffffff)

	out, err := w.typeMap.Encode(oid, pgtype.BinaryFormatCode, value, buf)
	if err != nil {
		out, err = w.encodeViaText(buf, oid, value)
		if err != nil {
			return nil, err
		}
	}
	if out == nil {
		return buf, nil
	}
	binary.BigEndian.PutUint32(out[sp:], uint32(len(out)-sp-4))
	return out, nil
}

// encodeViaText parses a value through the type's text format and encodes the
// result in binary. It lets CSV strings land in numeric, date and uuid columns.
func (w *StreamWriter) encodeViaText(buf []byte, oid uint32, value any) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		text, err := w.typeMap.Encode(oid, pgtype.TextFormatCode, value, nil)
		if err != nil {
			return nil, fmt.Errorf("cannot encode %T as oid %d: %w", value, oid, err)
		}
		s = string(text)
	}

	var parsed any
	if err := w.typeMap.Scan(oid, pgtype.TextFormatCode, []byte(s), &parsed); err != nil {
		return nil, fmt.Errorf("cannot encode %q as oid %d: %w", s, oid, err)
	}
	return w.typeMap.Encode(oid, pgtype.BinaryFormatCode, parsed, buf)
}
