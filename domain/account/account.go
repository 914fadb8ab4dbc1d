// Package account defines the account aggregate's logical attribute set and
// the domain events its mutations raise. Physical fan-out, uniqueness
// enforcement, and transactional writes live in the persistence layer;
// this package only describes the shape callers pass in and get back.
package account

import (
	"time"

	"github.com/google/uuid"

	"curity-identity-dap/pkg/utils"
)

// Attributes is the logical account record a caller submits to create or
// update an account. UserName is the sole required unique attribute; Email
// and Phone are optional but, when present, must also be unique (enforced
// by the persistence layer's fan-out, not by this struct).
type Attributes struct {
	AccountID string `validate:"omitempty,uuid4"`
	UserName  string `validate:"required,min=1,max=256"`
	Email     string `validate:"omitempty,email"`
	Phone     string `validate:"omitempty,e164"`
	Password  string `validate:"omitempty,min=1"`
	Active    bool
	// Extra carries the open bag of additional SCIM attributes this DAP
	// does not interpret, serialized into the store's `attributes` blob.
	Extra map[string]any

	// Created, Updated, and Version are server-assigned and ignored on
	// input; the store populates them on every returned Attributes value.
	Created int64 `validate:"-"`
	Updated int64 `validate:"-"`
	Version int   `validate:"-"`
}

// Validate checks Attributes against its struct tags. The store's Create
// calls it on its input; Update and Patch do not validate.
func (a Attributes) Validate() error {
	return utils.ValidateStruct(a)
}

// Meta renders the SCIM meta.created/meta.lastModified timestamps external
// callers expect, from the store's internal unix-second fields.
func (a Attributes) Meta() map[string]string {
	return map[string]string{
		"created":      utils.FormatRFC3339(time.Unix(a.Created, 0)),
		"lastModified": utils.FormatRFC3339(time.Unix(a.Updated, 0)),
	}
}

// NewAccountID generates a fresh opaque account identifier.
func NewAccountID() string {
	return uuid.NewString()
}

// UniqueAttributeValues returns the subject's unique attribute values
// keyed by name, omitting attributes that are unset. The result is a map
// and carries no ordering.
func (a Attributes) UniqueAttributeValues() map[string]string {
	values := map[string]string{"userName": a.UserName}
	if a.Email != "" {
		values["email"] = a.Email
	}
	if a.Phone != "" {
		values["phone"] = a.Phone
	}
	return values
}
