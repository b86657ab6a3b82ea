package protocol

const (
	// Settings are incomplete or invalid; the user has to fix them.
	ErrConfig = "E_CONFIG"

	// Input rig or its extra tag data cannot be compiled.
	ErrBadRig = "E_BAD_RIG"
	ErrBadTag = "E_BAD_TAG"

	// Output, archive or index could not be written.
	ErrWrite = "E_WRITE"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrConfig:   {},
	ErrBadRig:   {},
	ErrBadTag:   {},
	ErrWrite:    {},
	ErrInternal: {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
