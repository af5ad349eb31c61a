package modem

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

const defaultBaudRate = 115200

// openSerial opens the device raw at 8N1.
func openSerial(cfg Config) (Port, error) {
	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) && portErr.Code() == serial.InvalidSpeed {
			return nil, fmt.Errorf("unsupported baud rate %d: %w", cfg.BaudRate, err)
		}
		return nil, err
	}
	return port, nil
}
