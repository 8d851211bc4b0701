package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasscodeLength is the shortest passcode accepted.
const MinPasscodeLength = 4

var (
	// ErrPasscodeTooShort is returned by HashPasscode for short passcodes.
	ErrPasscodeTooShort = fmt.Errorf("passcode must be at least %d characters", MinPasscodeLength)
	// ErrWrongPasscode is returned by CheckPasscode on a mismatch.
	ErrWrongPasscode = errors.New("wrong passcode")
)

// HashPasscode returns the bcrypt hash of passcode.
func HashPasscode(passcode string) (string, error) {
	if len(passcode) < MinPasscodeLength {
		return "", ErrPasscodeTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing passcode: %w", err)
	}
	return string(hash), nil
}

// CheckPasscode compares passcode against a hash from HashPasscode.
func CheckPasscode(hash, passcode string) error {
	if hash == "" {
		return ErrWrongPasscode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)); err != nil {
		return ErrWrongPasscode
	}
	return nil
}
