package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"tlog.app/go/errors"
)

type (
	Config struct {
		// Output is where generated Go source is written.
		Output string `toml:"output"`

		// Run is the command building and running the generated program.
		Run []string `toml:"run"`

		// EntryArg is passed to text parameters of main.
		EntryArg string `toml:"entry_arg"`

		Analyze Analyze `toml:"analyze"`
	}

	Analyze struct {
		Transitive bool `toml:"transitive"`
		Taint      bool `toml:"taint"`
	}
)

// DefaultFile is read when it exists and no other file is given.
const DefaultFile = "gojo.toml"

func Default() Config {
	return Config{
		Output:   "app/main.go",
		Run:      []string{"go", "run", "./app"},
		EntryArg: "Internet",
	}
}

// Parse decodes TOML text over the defaults.
func Parse(data []byte) (Config, error) {
	c := Default()

	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return c, errors.Wrap(err, "decode")
	}

	if und := md.Undecoded(); len(und) != 0 {
		return c, errors.New("unknown key: %v", und[0])
	}

	if len(c.Run) == 0 {
		return c, errors.New("empty run command")
	}

	return c, nil
}

// Load reads the config file. An empty name means DefaultFile if it exists.
func Load(name string) (Config, error) {
	optional := name == ""
	if optional {
		name = DefaultFile
	}

	data, err := os.ReadFile(name)
	if optional && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	c, err := Parse(data)
	if err != nil {
		return c, errors.Wrap(err, "%v", name)
	}

	return c, nil
}
