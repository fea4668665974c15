// Package mongodb is the MongoDB store backend.
//
// Tasks live in the tasks collection. Each user document embeds the user's
// notification inbox as an array, so purging a task's notifications is one
// $pull across every user document. MongoDB is used without multi-document
// transactions: InTx runs its callback directly and the steps of a delete
// apply one after another.
package mongodb
