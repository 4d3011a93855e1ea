// Package security authenticates management and invocation callers.
//
// Users are read from a YAML file whose passwords are argon2id hashes in
// PHC string form:
//
//	users:
//	  admin:
//	    password: $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>
//	    roles: [admin, user]
//
// A successful authentication yields an ejb.Identity that the HTTP layer
// stores in the request context.
package security
