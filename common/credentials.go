package common

// Credentials holds what is needed to reach a host over SSH and to
// escalate privileges once there.
type Credentials struct {
	User          string
	Password      string
	KeyPassphrase string
	SudoPassword  string
}
