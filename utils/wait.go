package utils

import "time"

// WaitFor calls fn until it succeeds, sleeping interval seconds between
// tries. With attempts > 0 it gives up after that many tries and returns
// the last error; attempts <= 0 retries forever.
func WaitFor(attempts, interval int, fn func() error) error {
	var err error
	for try := 1; ; try++ {
		if attempts > 0 && try > attempts {
			return err
		}
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(time.Second * time.Duration(interval))
	}
}
