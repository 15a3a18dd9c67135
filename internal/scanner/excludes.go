package scanner

// DefaultExcludes returns the base-name patterns skipped by default: indexer
// and trash litter that macOS and Windows scatter across removable volumes.
// Tracking these would drown real drift in metadata churn.
func DefaultExcludes() []string {
	return []string{
		".DS_Store",
		"._*",
		".Spotlight-V100",
		".Trashes",
		".fseventsd",
		".TemporaryItems",
		"System Volume Information",
		"$RECYCLE.BIN",
	}
}
