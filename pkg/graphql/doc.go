// Package graphql is the request layer of the enrollment funnel. The
// documents it sends are fixed at build time (documents/*.graphql) and looked
// up by operation name; Query and Mutate decode the root field of a response
// into a caller supplied type. Execution happens on the remote service, this
// package only transports requests and classifies failures.
package graphql
