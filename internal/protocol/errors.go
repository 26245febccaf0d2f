package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Control layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrUnknownOp     = "E_UNKNOWN_OP"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrBusy          = "E_BUSY"
	ErrFinished      = "E_FINISHED"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrBadRequest:      {},
	ErrUnknownOp:       {},
	ErrInvalidTarget:   {},
	ErrBusy:            {},
	ErrFinished:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
