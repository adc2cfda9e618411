// Package domain contains core concepts of the chat data layer.
// Users, contact lists and messages are plain values; all mutation
// goes through events folded by the projection package.
package domain

import "time"

// User is a registered identity. Usernames are unique, case-sensitive
// and immutable once registered.
type User struct {
	Username  string
	CreatedAt time.Time
	LastLogin time.Time
}
