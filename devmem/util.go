package devmem

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~uint64
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(ErrPowerOfTwo, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the nearest multiple of alignment, which must be
// a power of two.
func AlignUp[T Number](value T, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignDown rounds value down to the nearest multiple of alignment, which must
// be a power of two.
func AlignDown[T Number](value T, alignment T) T {
	return value &^ (alignment - 1)
}
