package spatialq

import "errors"

// ErrNilEngine is returned when NewRunner is called without an engine.
var ErrNilEngine = errors.New("engine must not be nil")
