package archive

import (
	"github.com/pkg/errors"
)

// ErrIndexNotFound is returned by an incremental populate or a build that
// finds no stream_index.json. Run a full populate once first.
var ErrIndexNotFound = errors.New("stream index not found, run a full populate (-t) first")
