// Package remote exposes deployed components to remote callers over
// Connect.
//
// Requests and responses are google.protobuf.Struct and Value messages, so
// no generated code is needed. Calls run through the component's remote
// view; futures of asynchronous methods are awaited on the server. A
// failed call carries the error kind in the Kernel-Ejb-Error-Kind header,
// which the client turns back into a remote-family *ejb.Error.
package remote
