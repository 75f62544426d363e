// Package config implements the named-parameter configuration surface
// shared by every solver family. See params.go for the Params dictionary
// and keys.go for the typed, validating constructor of each recognized
// option key.
package config
