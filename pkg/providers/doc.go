// Package providers defines the capability boundary between the Meridian core
// and the external language-model services it routes to. The core never calls
// a provider API directly; it consumes the Provider interface plus the static
// capability descriptors (HIPAA compliance, BAA availability) that the policy
// engine needs for routing decisions.
//
// Providers are registered in an explicitly constructed Registry that is
// passed by reference to whatever needs it. There is no ambient global
// provider cache.
package providers
