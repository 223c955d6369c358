//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// WatchKeys watches Linux evdev devices under /dev/input/event* and calls the binding
// for every key-down event whose code is in bindings. Callbacks run on the reader
// goroutine of the device that produced the event.
//
// It is best-effort: if no input devices are available, it logs and returns.
func WatchKeys(ctx context.Context, l logger, bindings map[uint16]func()) {
	if len(bindings) == 0 {
		return
	}

	// input_event size depends on the arch timeval size.
	tvSize := int(binary.Size(unix.Timeval{}))
	if tvSize <= 0 {
		tvSize = 16
	}

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if l != nil {
			l.Infof("input", "no evdev devices found, key bindings disabled")
		}
		return
	}

	for _, path := range paths {
		go watchDevice(ctx, l, path, tvSize, bindings)
	}
	if l != nil {
		l.Infof("input", "watching %d evdev devices", len(paths))
	}
}

func watchDevice(ctx context.Context, l logger, path string, tvSize int, bindings map[uint16]func()) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}

		for _, code := range keyPresses(buf[:n], tvSize) {
			if fn, ok := bindings[code]; ok {
				if l != nil {
					l.Infof("input", "key %d pressed on %s", code, path)
				}
				fn()
			}
		}
	}
}
