package common

// AccessTokenHeaderName carries the access token in gRPC metadata and in
// the download URL query string.
const AccessTokenHeaderName = "access_token"

// Roles a user account can hold.
const (
	RoleOperations = "operations"
	RoleClient     = "client"
)
