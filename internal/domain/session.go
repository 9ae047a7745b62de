package domain

import "errors"

type ContextKey string

const SessionContextKey ContextKey = "session"

var ErrSessionNotFound = errors.New("session not found")
