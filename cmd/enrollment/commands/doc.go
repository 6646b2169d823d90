// Package commands defines the enrollment CLI.
//
// Commands
//
//   - serve    Run the HTTP wizard
//   - flows    List the flows and their steps
//   - render   Print the HTML of one step
//   - walk     Complete a flow from the terminal
//
// The root command loads configuration (defaults, YAML file, .env, ENROLL_*
// variables) and builds the logger before any subcommand runs. serve and walk
// talk to the GraphQL endpoint unless --offline swaps in canned responses.
package commands
