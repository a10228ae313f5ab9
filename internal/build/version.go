package build

// Version is set at link time with -ldflags "-X github.com/integrail/pets-cli/internal/build.Version=...".
var Version = "dev"
