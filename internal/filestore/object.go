package filestore

import (
	"path"
	"time"
)

// Object is one file in the file storage.
type Object struct {
	Bucket   string
	Key      string
	Owner    string
	Modified time.Time
}

func (o *Object) Identity() string     { return o.Key }
func (o *Object) Author() string       { return o.Owner }
func (o *Object) ChangedAt() time.Time { return o.Modified }
func (o *Object) DisplayName() string  { return path.Base(o.Key) }
func (o *Object) Location() string     { return o.Bucket + "/" + o.Key }
