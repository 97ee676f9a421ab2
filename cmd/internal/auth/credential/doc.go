// Package credential persists the bearer token and role used by the hiring dashboards.
//
// Values live in two tiers: a durable tier that survives process restarts and a
// session tier scoped to the running process. Every token alias and role alias
// is written to both tiers so older and newer call sites read the same value.
//
// All Store operations are best-effort: tier failures are logged and swallowed.
// Writes of a token/role pair are serialized inside one process, but the two
// tiers are updated one after the other and are not atomic as a unit.
package credential
