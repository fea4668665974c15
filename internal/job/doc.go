// Package job runs background work outside the request path.
//
// Jobs are persisted through a Store before they are queued, so a restart
// can pick up work that never finished: on Start the Runner reloads pending
// and processing records and rebuilds them through a Registry keyed by job
// type. A monitor goroutine re-queues jobs that stay in processing for longer
// than the configured age.
//
// The only job type today is notification delivery, submitted by
// TaskAssignedHandler when a task.assigned event is published.
package job
