// Package permission maps endpoints to the permission sets that may call
// them.
//
// A caller is authorized when its permission set intersects the endpoint's
// required set, when it holds the wildcard "*", or when the endpoint
// requires only the wildcard (public). Unknown endpoints are open by
// default to preserve upstream behavior; WithDefaultDeny opts into the
// fail-closed policy.
package permission
