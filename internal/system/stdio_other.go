//go:build !unix

package system

import "os"

// RedirectStdIO swaps the os.Stdout and os.Stderr variables. Runtime panics still go
// to the original stderr on these platforms.
func RedirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
