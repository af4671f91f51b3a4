// Package settings enables the database options the other workflows rely on:
// graph aliases and named graph security.
package settings
