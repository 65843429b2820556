//go:build !robotgo

package inject

import "fmt"

// NewRobot reports that the robotgo backend was not compiled in.
func NewRobot() (Injector, error) {
	return nil, fmt.Errorf("%w: robotgo backend not compiled in, rebuild with -tags robotgo or use backend dryrun", ErrUnavailable)
}
