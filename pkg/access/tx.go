package access

// Tx identifies an open server-side transaction.
//
// A Tx is handed explicitly to every operation that must run inside it.
// Changes made through it stay invisible to other sessions until
// CommitTransaction succeeds; a Tx that is never committed is equivalent to a
// rollback once the server expires it.
type Tx struct {
	DB string
	ID string
}

// InTx reports whether tx refers to an open transaction.
func InTx(tx *Tx) bool {
	return tx != nil && tx.ID != ""
}
