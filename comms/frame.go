package comms

import (
	"bytes"
	"io"
	"strconv"
)

// DefaultMaxFrame is the largest payload accepted unless told otherwise.
const DefaultMaxFrame = 1 << 20

// maxPrefix is the most digits a length prefix can have.
const maxPrefix = 10

// Frame puts the length prefix in front of a payload.
func Frame(payload []byte) []byte {
	prefix := strconv.Itoa(len(payload))
	out := make([]byte, 0, len(prefix)+1+len(payload))
	out = append(out, prefix...)
	out = append(out, ':')
	return append(out, payload...)
}

// FrameReader splits a byte stream into payloads. Bytes that don't make a
// whole frame yet are kept for the next Feed.
type FrameReader struct {
	leftover []byte
	max      int
}

// NewFrameReader makes a reader that refuses payloads over max bytes.
func NewFrameReader(max int) *FrameReader {
	if max <= 0 {
		max = DefaultMaxFrame
	}
	return &FrameReader{max: max}
}

// Buffered is how many bytes are waiting for the rest of a frame.
func (f *FrameReader) Buffered() int { return len(f.leftover) }

// Feed adds bytes from the stream and returns all complete payloads. If the
// stream is corrupt, the buffer is dropped and the error returned along with
// the payloads found before the corruption.
func (f *FrameReader) Feed(b []byte) ([][]byte, error) {
	f.leftover = append(f.leftover, b...)

	var out [][]byte
	for len(f.leftover) > 0 {
		colon := bytes.IndexByte(f.leftover, ':')
		prefix := f.leftover
		if colon >= 0 {
			prefix = f.leftover[:colon]
		}
		if !allDigits(prefix) || len(prefix) > maxPrefix || colon == 0 {
			f.leftover = nil
			return out, ErrBadFrame
		}
		if colon < 0 {
			// prefix not finished
			break
		}

		n, err := strconv.Atoi(string(prefix))
		if err != nil {
			f.leftover = nil
			return out, ErrBadFrame
		}
		if n > f.max {
			f.leftover = nil
			return out, ErrFrameTooLarge
		}
		rest := f.leftover[colon+1:]
		if len(rest) < n {
			break
		}

		payload := make([]byte, n)
		copy(payload, rest[:n])
		out = append(out, payload)
		f.leftover = rest[n:]
	}

	if len(f.leftover) == 0 {
		f.leftover = nil
	}
	return out, nil
}

// Reset drops anything buffered.
func (f *FrameReader) Reset() { f.leftover = nil }

func allDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Encoder writes framed messages.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one message, whole.
func (e *Encoder) Encode(m Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	return e.Send(b)
}

// Send writes bytes that are already framed.
func (e *Encoder) Send(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

// Decoder reads framed messages from a blocking reader.
type Decoder struct {
	r       io.Reader
	fr      *FrameReader
	pending [][]byte
	buf     []byte
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, fr: NewFrameReader(DefaultMaxFrame), buf: make([]byte, 4096)}
}

// Decode reads the next message. A corrupt frame is returned as an error,
// after which the decoder carries on from the next read.
func (d *Decoder) Decode() (Message, error) {
	for len(d.pending) == 0 {
		n, err := d.r.Read(d.buf)
		if n > 0 {
			frames, ferr := d.fr.Feed(d.buf[:n])
			d.pending = append(d.pending, frames...)
			if ferr != nil && len(d.pending) == 0 {
				return nil, ferr
			}
		}
		if err != nil && len(d.pending) == 0 {
			return nil, err
		}
	}
	payload := d.pending[0]
	d.pending = d.pending[1:]
	return Unmarshal(payload)
}
