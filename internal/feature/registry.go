package feature

// Flag is named such that checking for a feature uses `feature.Flag.Enabled(feature.ExampleFeature)`.
var Flag = New()

// flag names are written in kebab-case
const (
	DecoupleLogErrors         FlagName = "decouple-log-errors"
	ExplicitStreamEnumeration FlagName = "explicit-stream-enumeration"
)

func init() {
	Flag.SetFlags(map[FlagName]FlagDesc{
		DecoupleLogErrors:         {Type: Alpha, Description: "report the result of a file operation even if writing the log entry for it failed. By default a failed log write fails the operation."},
		ExplicitStreamEnumeration: {Type: Beta, Description: "enumerate alternate data streams using FindFirstStreamW during `scan`. Disable on filesystems without stream support, the Zone.Identifier stream is then probed directly."},
	})
}
