// Package printer drives an ESC/POS thermal printer over TCP or a serial device.
package printer

import (
	"context"
	"io"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotConnected     = errors.New("printer not connected")
	ErrAlreadyConnected = errors.New("printer already connected")
	ErrInvalidAddress   = errors.New("invalid printer address")
)

const defaultPort = "9100"

// Dialer opens a connection to a printer address.
type Dialer func(ctx context.Context, address string) (io.WriteCloser, error)

// Manager owns at most one printer connection and serializes print jobs.
type Manager struct {
	mu      sync.Mutex
	dial    Dialer
	conn    io.WriteCloser
	address string
}

// NewManager returns a manager using dial, or DefaultDialer when nil.
func NewManager(dial Dialer) *Manager {
	if dial == nil {
		dial = DefaultDialer
	}
	return &Manager{dial: dial}
}

// DefaultDialer understands "tcp://host[:port]" and device paths such as /dev/rfcomm0.
func DefaultDialer(ctx context.Context, address string) (io.WriteCloser, error) {
	switch {
	case strings.HasPrefix(address, "tcp://"):
		hostport := strings.TrimPrefix(address, "tcp://")
		if hostport == "" {
			return nil, ErrInvalidAddress
		}
		if _, _, err := net.SplitHostPort(hostport); err != nil {
			hostport = net.JoinHostPort(hostport, defaultPort)
		}
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", hostport)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to dial printer %s", hostport)
		}
		return conn, nil
	case strings.HasPrefix(address, "/"):
		f, err := os.OpenFile(address, os.O_WRONLY, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open printer device %s", address)
		}
		return f, nil
	default:
		return nil, errors.Wrapf(ErrInvalidAddress, "%q", address)
	}
}

// Connect opens the printer at address.
func (m *Manager) Connect(ctx context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return ErrAlreadyConnected
	}
	conn, err := m.dial(ctx, address)
	if err != nil {
		log.Printf("❌ Printer: connect %s failed: %v", address, err)
		return err
	}
	m.conn = conn
	m.address = address
	log.Printf("🖨️  Printer: connected to %s", address)
	return nil
}

// Disconnect closes the current connection, if any.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return ErrNotConnected
	}
	err := m.conn.Close()
	log.Printf("🔌 Printer: disconnected from %s", m.address)
	m.conn = nil
	m.address = ""
	if err != nil {
		return errors.Wrap(err, "failed to close printer connection")
	}
	return nil
}

// Connected reports whether a printer is attached.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Address returns the connected printer address or "".
func (m *Manager) Address() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address
}

// PrintReceipt prints receipt rows: the header rows centered and bold, the rest left.
// headerRows is how many leading rows form the header.
func (m *Manager) PrintReceipt(ctx context.Context, rows []string, headerRows int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w := NewWriter(m.conn).Init()
	w.Align(AlignCenter).Bold(true)
	for i, row := range rows {
		if i == headerRows {
			w.Bold(false).Align(AlignLeft)
		}
		w.Line(row)
	}
	w.Bold(false).Feed(3).Cut()

	if err := w.Flush(); err != nil {
		log.Printf("❌ Printer: print failed, dropping connection to %s: %v", m.address, err)
		// A failed write leaves the channel unusable; the next job must reconnect.
		_ = m.conn.Close()
		m.conn = nil
		m.address = ""
		return err
	}
	log.Printf("✅ Printer: printed %d rows", len(rows))
	return nil
}
