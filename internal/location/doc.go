// Package location provides the house and room hierarchy for a site.
//
// Houses contain Rooms. Devices reference a room by ID and the device
// registry checks that reference against this package on registration.
//
// # Thread Safety
//
// Registry is safe for concurrent use from multiple goroutines.
package location
