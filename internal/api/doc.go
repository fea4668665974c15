// Package api handles incoming HTTP requests for tasks and notifications:
// routing targets, request validation and response formatting. It adapts
// HTTP concerns to the operations of the service layer and maps service
// errors onto status codes and client-safe messages.
package api
