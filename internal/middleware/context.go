package middleware

// contextKey is a private type for context keys defined in this
// package, preventing collisions with keys from other packages.
type contextKey string
