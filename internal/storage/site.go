package storage

import "time"

// Site is one registry entry
type Site struct {
	Realm string    `json:"realm"`
	Added time.Time `json:"added"`
}
