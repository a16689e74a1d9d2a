// Package domain defines the core business types for the CRM dashboard service.
//
// Types in this package are pure value objects with no behavior, no network
// dependencies, and no HTTP concerns. They are the shared language between
// the CRM client, the dashboard services, and the API handlers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No http.Request, no context.Context in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Validation methods are allowed (they're pure functions on the type)
//   - Constants and enums belong here
package domain
