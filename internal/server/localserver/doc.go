// Package localserver serves the management routes on a Unix domain socket.
//
// Callers on the socket are trusted as the local administrator: no
// credentials are asked for and the request runs with LocalIdentity. Access
// is controlled by the socket file permissions (0600, owner only).
package localserver
