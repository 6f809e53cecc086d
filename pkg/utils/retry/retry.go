package retry

import "time"

// WithDelay runs fn up to attempts times, sleeping delay between tries.
// Returns the last error if every attempt fails.
func WithDelay(attempts int, delay time.Duration, fn func() error) error {
	var err error

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(delay)
	}

	return err
}
