// Package migrate copies one named graph into another inside a single
// transaction and moves the source's aliases along.
//
// The sequence is: begin, count both graphs, read the source's aliases, ADD
// source TO target, bind each alias to the target, unbind each from the
// source, DROP the source, recount, then ask a Confirmer. Only an affirmative
// answer commits; every other path rolls the transaction back, so readers
// outside it see either the untouched original state or the complete result.
package migrate
