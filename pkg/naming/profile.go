package naming

//go:generate go run github.com/dmarkham/enumer -type Profile -trimprefix Profile -transform kebab -yaml -text -output profile.gen.go

// Profile selects the role naming convention.
type Profile int

const (
	ProfilePerDatabase Profile = iota
	ProfileGlobal
	ProfileGrouped
)
