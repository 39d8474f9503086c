package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

// Values carried after the prefix
const (
	ActionStart    = "start"
	ActionReview   = "review"
	ActionSubmit   = "submit"
	ConfirmCancel  = "cancel"
	ConfirmProceed = "continue"
)

// Prefixes select the handler branch of a button
const (
	PrefixAction   = "action"
	PrefixDownload = "dl"
	PrefixConfirm  = "confirm"
)

// maxCallbackData is the Bot API limit for callback_data in bytes
const maxCallbackData = 64

var ErrBadCallback = errors.New("malformed callback data")

var knownPrefixes = map[string]bool{
	PrefixAction:   true,
	PrefixDownload: true,
	PrefixConfirm:  true,
}

// CallbackData is a decoded "prefix:value" button payload
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback decodes data produced by EncodeCallback. Payloads of old
// bot versions with unknown prefixes are rejected.
func ParseCallback(data string) (*CallbackData, error) {
	if len(data) > maxCallbackData {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadCallback, len(data))
	}

	prefix, value, found := strings.Cut(data, ":")
	if !found || value == "" || !knownPrefixes[prefix] {
		return nil, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	return &CallbackData{Action: prefix, Value: value}, nil
}

func EncodeCallback(prefix, value string) string {
	return prefix + ":" + value
}
