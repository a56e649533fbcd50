// Package common contains shared constants and sentinel errors used across
// the tutorsync client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// admin access token on outbound write requests.
const AccessTokenHeaderName = "access_token"

// AdminSubject is the token subject the console uses for content writes.
const AdminSubject = "ADMIN"
