package constants

import "errors"

// Configuration errors.
var (
	ErrAPIEndpointRequired   = errors.New("API endpoint is required")
	ErrUnknownOrgStore       = errors.New("unknown org store backend")
	ErrNATSURLRequired       = errors.New("NATS URL is required for the nats org store")
	ErrUnknownKeyringBackend = errors.New("unknown keyring backend")
)

// Session and login errors.
var (
	ErrUsernameRequired     = errors.New("username is required")
	ErrNoOrganizationTarget = errors.New("no organization targeted, run 'cfapps target -o <org>'")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrAppGUIDRequired      = errors.New("at least one app GUID is required")
)
