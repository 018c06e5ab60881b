package token

import (
	"fmt"

	"github.com/google/uuid"
)

// Token is a process-wide unique, comparable interface handle.
type Token struct {
	id    uuid.UUID
	label string
}

// New mints a fresh token. The label is used for display only.
func New(label string) Token {
	return Token{id: uuid.New(), label: label}
}

// Label returns the human readable label the token was created with.
func (t Token) Label() string {
	return t.label
}

// IsZero reports whether t is the zero Token, which never identifies anything.
func (t Token) IsZero() bool {
	return t.id == uuid.Nil
}

// String implements fmt.Stringer.
func (t Token) String() string {
	if t.IsZero() {
		return "token(<zero>)"
	}
	return fmt.Sprintf("token(%s#%s)", t.label, t.id.String()[:8])
}
