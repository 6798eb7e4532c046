package submission

import (
	"errors"
	"time"
)

// ErrNotFound is returned by sources when a listed location or a previously
// listed object no longer exists on the remote side.
var ErrNotFound = errors.New("remote object not found")

// RemoteObject is a single remote artifact: a file from the file-storage API
// or a file inside a tagged git commit.
type RemoteObject interface {
	// Identity is a stable string identifying the object across passes.
	Identity() string
	// Author is the login of the person who owns the object.
	Author() string
	// ChangedAt orders competing versions of the same slot.
	ChangedAt() time.Time
	// DisplayName is the short name used for slot matching.
	DisplayName() string
	// Location is the human readable place of the object, used in notifications.
	Location() string
}

// Revisioned objects belong to a snapshot that is only valid as a whole,
// such as the files of one git commit. A submission never mixes objects of
// different revisions: the newest revision wins and replaces every slot.
type Revisioned interface {
	RemoteObject
	Revision() string
}
