// Package model defines the GORM models of the ngsec ledger database.
//
// # Models
//
//   - Run: one workflow invocation (provision, migrate, cutover, reap,
//     settings) with its outcome and timing
//
// # Database Schema
//
// The tables are created by the migrations embedded in package db:
//
//   - ngsec_runs: workflow runs
//   - messages: RFC5424 audit records written by package audit
package model
