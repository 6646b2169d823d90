// Package state holds the enrollment state tree and the reducers that are
// its only mutators.
//
// Every change is an Action named "<domain>/<VERB>", for example
// "seeker/SET_ZIP_CODE" or "providerCC/SET_RATE_RANGE". Reducers are pure:
// they never mutate their input and never alias slices between the old and
// the new tree. A Store serialises dispatches for one session.
package state
