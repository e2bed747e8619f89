package cmd

// Version is overridden from the embedded VERSION file or with
// -ldflags "-X snapsync/cmd.Version=...".
var Version = "dev"

// ApplyVersion copies Version onto the root command for --version.
func ApplyVersion() {
	rootCmd.Version = Version
}

func init() {
	ApplyVersion()
}
