// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import "errors"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput is returned for blank text or identifiers. Nothing is
	// recorded and no notification is raised.
	ErrEmptyInput = errors.New("empty input")

	// ErrSendInFlight is returned when a send is attempted while another is
	// outstanding. Nothing is recorded and no notification is raised.
	ErrSendInFlight = errors.New("a message is already being sent")

	// ErrInvalidPersona is returned when switching to a persona that is not
	// in the loaded persona set.
	ErrInvalidPersona = errors.New("invalid persona")

	// ErrGatewayUnavailable wraps any gateway failure surfaced to the caller.
	ErrGatewayUnavailable = errors.New("agent gateway unavailable")

	// ErrConversationReset is returned when a reply arrived after the
	// conversation was cleared; the reply is dropped.
	ErrConversationReset = errors.New("conversation was reset while waiting for a reply")
)

// IsSilent reports whether err is one of the rejections hosts should not
// surface to the user.
func IsSilent(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrSendInFlight) ||
		errors.Is(err, ErrConversationReset)
}
