package auth

import (
	"errors"

	"github.com/event-master/backend/pkg/i18n"
)

// Message maps a signup/login error to a message id and its template data.
// ok is false for unexpected errors.
func Message(err error) (key string, data map[string]any, ok bool) {
	var exists *RoleExistsError
	var notHeld *RoleNotHeldError
	switch {
	case errors.As(err, &exists):
		return i18n.MsgRoleExists, map[string]any{"Email": exists.Email, "Type": string(exists.Role)}, true
	case errors.As(err, &notHeld):
		return i18n.MsgRoleNotHeld, map[string]any{"Email": notHeld.Email, "Type": string(notHeld.Role)}, true
	case errors.Is(err, ErrInvalidCredentials):
		return i18n.MsgInvalidCredentials, nil, true
	case errors.Is(err, ErrInvalidRole):
		return i18n.MsgInvalidForm, nil, true
	}
	return i18n.MsgInternal, nil, false
}
