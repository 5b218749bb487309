package opts

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string // plan file path, from --config
	Debug      bool   // verbose logging, from --debug
}
