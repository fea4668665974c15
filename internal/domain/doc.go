// Package domain contains the core business entities of the task board:
// tasks, the users they reference and the notifications sent about them.
// It also holds the task authorization policy, which is independent of any
// storage or delivery mechanism.
package domain
