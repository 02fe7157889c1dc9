package main

import "kindlechess/cmd"

// Set during release builds with -ldflags "-X main.version=... -X main.releaseRepo=owner/name".
var (
	version     = "dev"
	releaseRepo = ""
)

func main() {
	cmd.SetVersion(version)
	cmd.SetReleaseRepo(releaseRepo)
	cmd.Execute()
}
