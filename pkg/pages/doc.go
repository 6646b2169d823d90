// Package pages binds the wizard page catalog to state and the request
// layer.
//
// Pages are declared as OpenAPI operations in pages.yaml. Each operation's
// request body becomes the page form, and its x-enroll extension names the
// state verb to dispatch, the effect to run after a valid submission and
// whether the page needs a signed in member. The Controller walks a flow one
// step at a time:
//
//	view   := ctrl.View(ctx, f, "zip", st, csrf)
//	result := ctrl.Submit(ctx, f, "zip", st, r.PostForm, csrf)
//	// persist result.State, then redirect to result.Next.Path or render
//	// result.View on OutcomeInvalid and OutcomeFailed.
//
// Effects talk to the GraphQL API through graphql.Executor. A failing critical
// effect leaves state untouched and re-renders the page with the mapped
// errors; other failures are logged and the flow moves on.
package pages
