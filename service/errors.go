package service

import (
	"errors"
	"strings"
)

var (
	ErrGoalNotFound   = errors.New("run goal not found")
	ErrRecordNotFound = errors.New("run record not found")
	ErrUserNotFound   = errors.New("user not found")
)

// ValidationError lists every field rule a request broke.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
