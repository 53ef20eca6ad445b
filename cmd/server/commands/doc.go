// Package commands defines the server CLI and wires dependencies for subcommands.
//
// Commands
//
//   - serve     Run the presentation API (default)
//   - catalog   Print a freshly generated listing catalog as JSON
//   - ask       Print the assistant's reply to a message
//
// The root command loads configuration (.env, then the environment) and
// builds the logger before any subcommand runs. Stores are constructed once
// per process and handed to the API; nothing is kept in package globals
// outside this package.
package commands
