//go:build linux

package modem

import "golang.org/x/sys/unix"

func checkAccess(device string) error {
	return unix.Access(device, unix.R_OK|unix.W_OK)
}
