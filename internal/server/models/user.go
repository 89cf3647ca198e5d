// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account in the user pool. The Username is the stable federated
// identifier that scopes every memory record and blob.
type User struct {
	ID         string
	Username   string
	Email      string
	GivenName  string
	FamilyName string
	CreatedAt  time.Time
}
