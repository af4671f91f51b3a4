// Package ledger keeps a history of workflow runs in PostgreSQL.
//
// Each provision, migrate, cutover, reap and settings run opens a row when it
// starts and closes it with its outcome, so operators can see which graph
// migrations were committed, aborted or left partial.
package ledger
