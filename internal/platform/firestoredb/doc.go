// Package firestoredb is the Cloud Firestore store backend.
//
// Tasks and users are top-level collections keyed by UUID. Each user's inbox
// is the notifications sub-collection of the user document, so purging a
// task's notifications is a collection-group query followed by a bulk
// delete. Firestore transactions cannot span those queries, so InTx runs its
// callback directly.
package firestoredb
