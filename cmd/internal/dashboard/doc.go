// Package dashboard holds the role-specific API modules used by the hiring dashboards.
// Each module owns one apiclient.Client and returns typed values or *apiclient.Error.
package dashboard
