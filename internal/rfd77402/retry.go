// internal/rfd77402/retry.go
package rfd77402

import "time"

// retry calls cond up to attempts times, sleeping interval between calls.
// It reports whether cond returned true. An error from cond aborts at once.
func retry(attempts int, interval time.Duration, sleep func(time.Duration), cond func() (bool, error)) (bool, error) {
	for i := 0; i < attempts; i++ {
		if i > 0 && interval > 0 {
			sleep(interval)
		}
		ok, err := cond()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
