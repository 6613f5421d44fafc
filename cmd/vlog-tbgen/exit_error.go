package main

import "fmt"

// exitError signals a non-zero exit code without calling os.Exit in RunE handlers
type exitError struct {
	Code int
	Err  error
}

func (e *exitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *exitError) Unwrap() error {
	return e.Err
}
