// Package events lets the service layer publish domain events without
// knowing who consumes them. The only event today is TypeTaskAssigned, which
// the job runner turns into a notification delivery in async notify mode.
package events
