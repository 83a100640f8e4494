package printer

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// ESC/POS command bytes understood by common 58/80mm thermal printers.
var (
	cmdInit        = []byte{0x1b, 0x40}
	cmdAlignLeft   = []byte{0x1b, 0x61, 0x00}
	cmdAlignCenter = []byte{0x1b, 0x61, 0x01}
	cmdBoldOn      = []byte{0x1b, 0x45, 0x01}
	cmdBoldOff     = []byte{0x1b, 0x45, 0x00}
	cmdCut         = []byte{0x1d, 0x56, 0x42, 0x00}
)

// Align is a horizontal text alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Writer buffers ESC/POS commands; the first write error sticks.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (e *Writer) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

// Init resets the printer to its defaults.
func (e *Writer) Init() *Writer {
	e.write(cmdInit)
	return e
}

// Align sets the alignment for following text.
func (e *Writer) Align(a Align) *Writer {
	if a == AlignCenter {
		e.write(cmdAlignCenter)
	} else {
		e.write(cmdAlignLeft)
	}
	return e
}

// Bold toggles emphasized text.
func (e *Writer) Bold(on bool) *Writer {
	if on {
		e.write(cmdBoldOn)
	} else {
		e.write(cmdBoldOff)
	}
	return e
}

// Line prints text followed by a line feed.
func (e *Writer) Line(text string) *Writer {
	e.write([]byte(text))
	e.write([]byte{'\n'})
	return e
}

// Feed advances the paper n lines.
func (e *Writer) Feed(n int) *Writer {
	e.write([]byte{0x1b, 0x64, byte(n)})
	return e
}

// Cut performs a partial cut after feeding past the tear bar.
func (e *Writer) Cut() *Writer {
	e.write(cmdCut)
	return e
}

// Flush sends buffered commands and reports the first error seen.
func (e *Writer) Flush() error {
	if e.err != nil {
		return errors.Wrap(e.err, "failed to write to printer")
	}
	if err := e.w.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush printer")
	}
	return nil
}
