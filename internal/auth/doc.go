// Package auth provides bearer-token authorisation for the telemetry API.
//
// Tokens are HS256-signed JWTs carrying a subject and one of three roles:
//   - viewer: read readings and inventory
//   - sensor: viewer plus reading ingest (gateways, scripts)
//   - admin: everything, including token issue
//
// There are no user accounts. Tokens are minted offline with
// `telemetry -issue-token` and validated by signature and expiry only.
package auth
