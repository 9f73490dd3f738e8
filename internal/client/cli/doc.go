// Package cli provides the megasession command-line client.
//
// It wires configuration, the /cs API client and the auth services, then runs
// a single subcommand:
//
//	register <name> <email>   create an account and request the confirmation mail
//	verify <uh> <code>        confirm the account with the mailed code
//	login <email>             log in and print the account record
//	ephemeral                 create an ephemeral account and log into it
//	errcode <code|name>       describe an API error code
//
// Passwords are always read from the terminal without echo.
package cli
