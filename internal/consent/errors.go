package consent

import "fmt"

// WrongChecksumError aborts a consent write whose checksum no longer matches the
// stored one. The enclosing transaction is rolled back; callers may retry with a
// fresh read.
type WrongChecksumError struct {
	ConsentID string
	Reason    string
}

func (e *WrongChecksumError) Error() string {
	return fmt.Sprintf("wrong checksum for consent %s: %s", e.ConsentID, e.Reason)
}
