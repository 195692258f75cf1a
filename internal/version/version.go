package version

// Version is the current PRereq release. Overridden at build time with
// -ldflags "-X github.com/g30r93g/PRereq/internal/version.Version=..."
var Version = "0.1.0"

// FullVersion returns the version with the v prefix
func FullVersion() string {
	return "v" + Version
}
