package engine

// EngineVersion is stamped on every batch result so runs can be compared.
const EngineVersion = "go-1.0.0"

// Seeds key the random streams. Server is the HMAC key; Client is mixed into
// the message together with the trial index.
type Seeds struct {
	Server string `json:"server" yaml:"server"` // ASCII; do NOT hex-decode
	Client string `json:"client" yaml:"client"`
}
