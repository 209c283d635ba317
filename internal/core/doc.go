// Package core provides the superpwdhash site registry operations.
//
// Core operations include:
//   - Init: Store a master password verifier in a new or existing registry
//   - AddSites/RemoveSites/Sites: Maintain the list of known realms
//   - Derive: Verify the master password (when a verifier exists) and
//     derive the site password
//   - Import/Export: Exchange the host list as a JSON array of strings,
//     the format the browser version keeps in local storage
//
// The registry never holds a master password or a derived password.
package core
