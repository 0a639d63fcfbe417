package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session layer.
	ErrAuth      = "E_AUTH"
	ErrRateLimit = "E_RATE_LIMIT"

	// Procedure layer.
	ErrBadRequest  = "E_BAD_REQUEST"
	ErrUnknownProc = "E_UNKNOWN_PROC"
	ErrInternal    = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrAuth:            {},
	ErrRateLimit:       {},
	ErrBadRequest:      {},
	ErrUnknownProc:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
