// Package validation holds the pure invariant checks run before any
// mutation is committed. Checks collect every applicable violation
// instead of stopping at the first one, so a single append can report
// a missing room and an empty body at the same time.
package validation

import (
	"fmt"
	"strings"

	"chat-store/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Kind tags a specific invariant breach. The external layer maps each
// kind to user-facing text; the engine only exposes the tag.
type Kind string

const (
	MissingRoom  Kind = "missing_room"
	MissingUser  Kind = "missing_user"
	EmptyContent Kind = "empty_content"
)

// Error carries the full violation set of a rejected mutation.
type Error struct {
	Kinds []Kind
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		parts[i] = string(k)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

func (e *Error) Has(kind Kind) bool {
	for _, k := range e.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// NewError wraps a non-empty violation set. Returns nil for an empty set
// so callers can return the result directly.
func NewError(kinds []Kind) *Error {
	if len(kinds) == 0 {
		return nil
	}
	return &Error{Kinds: kinds}
}

// messageBody expresses the "content or image" rule as struct tags.
// Both fields failing required_without collapses into one EmptyContent.
type messageBody struct {
	Content string `validate:"required_without=Image"`
	Image   string `validate:"required_without=Content"`
}

// CheckMessage returns every violation of a candidate append. Room and
// user existence are resolved by the caller against current registry
// state so this function stays pure. Order of kinds is deterministic:
// structural references first, then the body rule.
func CheckMessage(cmd domain.AppendMessageCommand, roomExists, userExists bool) []Kind {
	var kinds []Kind
	if !roomExists {
		kinds = append(kinds, MissingRoom)
	}
	if !userExists {
		kinds = append(kinds, MissingUser)
	}

	body := messageBody{Content: cmd.Content, Image: string(cmd.Image)}
	if err := validate.Struct(body); err != nil {
		kinds = append(kinds, EmptyContent)
	}
	return kinds
}
