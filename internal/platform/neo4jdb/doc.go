// Package neo4jdb is the Neo4j store backend.
//
// Tasks, users and notifications are nodes labelled Task, User and
// Notification, keyed by an id property with a uniqueness constraint.
// References between them are plain id properties, so a notification can
// outlive neither its task (DeleteByTask) nor point at a user that was never
// created. Each operation runs in its own managed transaction; InTx opens an
// explicit transaction and hands every entity store the same one.
package neo4jdb
