package util

import "os"

// Pushd switches the working directory and returns a function that
// switches back.
func Pushd(dir string) (func() error, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := os.Chdir(dir); err != nil {
		return nil, err
	}

	return func() error { return os.Chdir(wd) }, nil
}
