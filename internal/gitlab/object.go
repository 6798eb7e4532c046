package gitlab

import (
	"time"
)

// Object is one file of a submitted (tagged) commit.
type Object struct {
	Project  string
	Tag      string
	CommitID string
	Path     string
	Name     string
	BlobID   string
	Owner    string
	Created  time.Time
}

func (o *Object) Identity() string     { return o.CommitID + ":" + o.Path }
func (o *Object) Author() string       { return o.Owner }
func (o *Object) ChangedAt() time.Time { return o.Created }
func (o *Object) DisplayName() string  { return o.Name }
func (o *Object) Location() string     { return o.Project + "@" + o.Tag + ":" + o.Path }
func (o *Object) Revision() string     { return o.CommitID }
