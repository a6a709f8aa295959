package types

// Address identifies a principal. The ledger compares addresses for equality only.
type Address string

// ZeroAddress is the reserved sentinel that can never receive tokens.
const ZeroAddress Address = "SP000000000000000000002Q6VF78"

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}
