// Package routes centralizes the HTTP route paths exposed by the server so
// handlers, middleware, and tests reference one definition.
package routes

const version = "v0"

// Version returns the API version segment, e.g. "v0".
func Version() string {
	return version
}

// Base returns the versioned API prefix, e.g. "/api/v0".
func Base() string {
	return "/api/" + version
}

// Users returns the users collection route.
func Users() string {
	return Base() + "/users"
}

// HealthVersioned returns the versioned health route.
func HealthVersioned() string {
	return Base() + "/health"
}
