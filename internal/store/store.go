// Package store persists client records for the import service.
//
// Postgres is the production store. Memory keeps everything in process and
// backs tests and the rosterctl preview command.
package store

import (
	"errors"

	"github.com/JonMunkholm/rosterimport/internal/core"
)

// ErrClientNotFound is returned when an overwrite targets a client that no
// longer exists. The whole batch is rejected.
var ErrClientNotFound = errors.New("client not found")

var (
	_ core.ClientStore = (*Postgres)(nil)
	_ core.ClientStore = (*Memory)(nil)
)
