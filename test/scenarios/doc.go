// Package scenarios runs the feature files under features/ against an
// in-memory Stardog server.
package scenarios
