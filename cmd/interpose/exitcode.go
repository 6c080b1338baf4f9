package main

// exitCodeError carries a process exit code out of a command without
// printing anything further.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return ""
}

func (e *exitCodeError) ExitCode() int {
	return e.code
}

func commandExit(code int) error {
	if code == 0 {
		return nil
	}
	return &exitCodeError{code: code}
}
