// Package modem drives a GSM modem over its serial device node with AT
// commands in text mode.
package modem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const ctrlZ = "\x1a"

var (
	ErrInvalidNumber  = errors.New("INVALID_NUMBER")
	ErrInvalidMessage = errors.New("INVALID_MESSAGE")
	ErrNoPrompt       = errors.New("NO_PROMPT")
	ErrTimeout        = errors.New("MODEM_TIMEOUT")
)

// CommandError is a final result code other than OK.
type CommandError struct {
	Command string
	Result  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("modem rejected %s: %s", e.Command, e.Result)
}

type Config struct {
	Device   string        `mapstructure:"device"`
	BaudRate int           `mapstructure:"baud_rate"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Port is an open serial line. A Read that times out returns 0 bytes and no
// error, as go.bug.st/serial ports do.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

type OpenFunc func(cfg Config) (Port, error)

type AccessFunc func(device string) error

// Report is produced once the modem has accepted a message.
type Report struct {
	PhoneNumber string
	Reference   int
	At          time.Time
}

type Option func(*Modem)

func WithOpener(open OpenFunc) Option {
	return func(m *Modem) { m.open = open }
}

func WithAccessCheck(access AccessFunc) Option {
	return func(m *Modem) { m.access = access }
}

type Modem struct {
	cfg    Config
	logger *zap.Logger
	open   OpenFunc
	access AccessFunc

	mu      sync.Mutex
	port    Port
	pending []byte
	chunk   [256]byte
}

func New(cfg Config, logger *zap.Logger, opts ...Option) *Modem {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = defaultBaudRate
	}

	m := &Modem{cfg: cfg, logger: logger, open: openSerial, access: checkAccess}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HasSendPermission reports whether the process can currently read and write
// the device node. It is evaluated on every call.
func (m *Modem) HasSendPermission(ctx context.Context) bool {
	if err := m.access(m.cfg.Device); err != nil {
		m.logger.Debug("Modem device not accessible",
			zap.String("device", m.cfg.Device),
			zap.Error(err))
		return false
	}
	return true
}

// RequestSendPermission cannot grant access itself; it records the request for
// the operator, who grants it out of band.
func (m *Modem) RequestSendPermission(ctx context.Context) error {
	m.logger.Warn("Send permission requested, grant read/write access to the modem device",
		zap.String("device", m.cfg.Device))
	return nil
}

// SendText submits one message and hands the outcome to onSent on its own
// goroutine.
func (m *Modem) SendText(ctx context.Context, phoneNumber, message string, onSent func(Report)) error {
	number, err := normalizeNumber(phoneNumber)
	if err != nil {
		return err
	}
	if strings.ContainsAny(message, "\x1a\x1b") {
		return ErrInvalidMessage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureOpen(); err != nil {
		return err
	}

	deadline := time.Now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	ref, err := m.submit(number, message, deadline)
	if err != nil {
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			m.reset()
		}
		return err
	}

	m.logger.Debug("Modem accepted message",
		zap.String("to", phoneNumber),
		zap.Int("reference", ref))

	if onSent != nil {
		report := Report{PhoneNumber: phoneNumber, Reference: ref, At: time.Now()}
		go onSent(report)
	}

	return nil
}

func (m *Modem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port == nil {
		return nil
	}
	err := m.port.Close()
	m.port, m.pending = nil, nil
	return err
}

func (m *Modem) submit(phoneNumber, message string, deadline time.Time) (int, error) {
	// Echo off keeps message text from being read back as result codes.
	for _, cmd := range []string{"ATE0", "AT+CMGF=1"} {
		if _, err := m.command(cmd, deadline); err != nil {
			return 0, err
		}
	}

	cmgs := fmt.Sprintf("AT+CMGS=%q", phoneNumber)
	if err := m.write(cmgs + "\r"); err != nil {
		return 0, err
	}
	if err := m.awaitPrompt(cmgs, deadline); err != nil {
		return 0, err
	}

	if err := m.write(message + ctrlZ); err != nil {
		return 0, err
	}

	lines, err := m.collect(cmgs, deadline)
	if err != nil {
		return 0, err
	}

	ref := -1
	for _, line := range lines {
		if v, ok := strings.CutPrefix(line, "+CMGS:"); ok {
			if n, convErr := strconv.Atoi(strings.TrimSpace(v)); convErr == nil {
				ref = n
			}
		}
	}
	return ref, nil
}

// command writes cmd and collects intermediate lines up to the final result.
func (m *Modem) command(cmd string, deadline time.Time) ([]string, error) {
	if err := m.write(cmd + "\r"); err != nil {
		return nil, err
	}
	return m.collect(cmd, deadline)
}

func (m *Modem) collect(cmd string, deadline time.Time) ([]string, error) {
	var lines []string
	for {
		line, err := m.readLine(deadline)
		if err != nil {
			return nil, err
		}

		switch {
		case line == cmd || line == ">":
			continue
		case line == "OK":
			return lines, nil
		case isFinalError(line):
			return nil, &CommandError{Command: cmd, Result: line}
		default:
			lines = append(lines, line)
		}
	}
}

func (m *Modem) awaitPrompt(cmd string, deadline time.Time) error {
	for {
		line, err := m.readLine(deadline)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				return fmt.Errorf("%w: %w", ErrNoPrompt, err)
			}
			return err
		}

		switch {
		case line == ">":
			return nil
		case line == cmd:
			continue
		case isFinalError(line):
			return &CommandError{Command: cmd, Result: line}
		}
	}
}

// readLine returns the next non-empty line. The bare "> " prompt carries no
// line terminator and is returned as ">".
func (m *Modem) readLine(deadline time.Time) (string, error) {
	for {
		if line, ok := m.nextLine(); ok {
			return line, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", ErrTimeout
		}
		if err := m.port.SetReadTimeout(remaining); err != nil {
			return "", err
		}

		n, err := m.port.Read(m.chunk[:])
		m.pending = append(m.pending, m.chunk[:n]...)
		if err != nil {
			return "", err
		}
	}
}

func (m *Modem) nextLine() (string, bool) {
	for {
		m.pending = bytes.TrimLeft(m.pending, " \r\n")
		if len(m.pending) == 0 {
			return "", false
		}
		if m.pending[0] == '>' {
			m.pending = m.pending[1:]
			return ">", true
		}

		i := bytes.IndexByte(m.pending, '\n')
		if i < 0 {
			return "", false
		}
		line := strings.TrimSpace(string(m.pending[:i]))
		m.pending = m.pending[i+1:]
		if line != "" {
			return line, true
		}
	}
}

func (m *Modem) write(s string) error {
	_, err := io.WriteString(m.port, s)
	return err
}

func (m *Modem) ensureOpen() error {
	if m.port != nil {
		return nil
	}

	port, err := m.open(m.cfg)
	if err != nil {
		return fmt.Errorf("open modem %s: %w", m.cfg.Device, err)
	}

	m.port = port
	m.pending = m.pending[:0]
	m.logger.Info("Modem port opened", zap.String("device", m.cfg.Device))
	return nil
}

// reset drops a port left in an unknown state so the next send reopens it.
func (m *Modem) reset() {
	if m.port == nil {
		return
	}
	if err := m.port.Close(); err != nil {
		m.logger.Warn("Failed to close modem port", zap.Error(err))
	}
	m.port, m.pending = nil, nil
}

func isFinalError(line string) bool {
	return line == "ERROR" ||
		strings.HasPrefix(line, "+CMS ERROR") ||
		strings.HasPrefix(line, "+CME ERROR")
}

// normalizeNumber drops formatting characters and rejects anything that could
// break out of the quoted AT+CMGS argument.
func normalizeNumber(phoneNumber string) (string, error) {
	var b strings.Builder
	for _, r := range phoneNumber {
		switch {
		case r == ' ', r == '-', r == '(', r == ')', r == '.':
		case r >= '0' && r <= '9', r == '*', r == '#':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		default:
			return "", ErrInvalidNumber
		}
	}
	if b.Len() == 0 || b.String() == "+" {
		return "", ErrInvalidNumber
	}
	return b.String(), nil
}
