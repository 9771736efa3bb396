package arbor

// Version is the release tag. Overridden at build time with
// -ldflags "-X github.com/aretw0/arbor.Version=v1.2.3".
var Version = "0.1.0-dev"
