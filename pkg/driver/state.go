package driver

import "fmt"

// State represents driver's state
type State string

const (
	// StateClosed means that the driver has not been opened. The device is
	// not claimed and its properties may not be known yet.
	StateClosed State = "closed"
	// StateOpened means that the device is claimed and ready to play.
	StateOpened State = "opened"
	// StateRunning means that the device is consuming audio.
	StateRunning State = "running"
)

// Update updates current state, s, to next. If f fails to execute,
// s will stay unchanged. Otherwise, s will be updated to next
func (s *State) Update(next State, f func() error) error {
	if err := s.check(next); err != nil {
		return err
	}

	if err := f(); err != nil {
		return err
	}
	*s = next
	return nil
}

func (s State) check(next State) error {
	switch next {
	case StateOpened:
		if s != StateClosed {
			return fmt.Errorf("invalid state: driver is already opened")
		}
	case StateRunning:
		if s == StateClosed {
			return fmt.Errorf("invalid state: driver is closed")
		}
		if s == StateRunning {
			return fmt.Errorf("invalid state: driver is already running")
		}
	case StateClosed:
	default:
		return fmt.Errorf("invalid state: unknown state %q", next)
	}
	return nil
}
