// Package service contains the task board use cases. It orchestrates the
// domain types, the store.Store of the configured backend and the notifier,
// and translates store errors into the service sentinels the API maps to
// HTTP status codes.
//
// Services receive their dependencies through constructor injection and
// never depend on a specific backend.
package service
