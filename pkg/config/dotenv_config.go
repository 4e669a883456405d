package config

import (
	"os"

	"github.com/apex/log"
	"github.com/subosito/gotenv"
)

// DotenvConfig loads a .env file into the process environment and reads keys from
// the environment.
type DotenvConfig struct {
	keys
	DotenvPath string
}

func NewDotenvConfig(path string) *DotenvConfig {
	return &DotenvConfig{keys: keys{lookup: os.Getenv}, DotenvPath: path}
}

func (c *DotenvConfig) LoadFromPath(path string) error {
	c.DotenvPath = path
	return gotenv.Load(c.DotenvPath)
}

func (c *DotenvConfig) Load() error {
	return gotenv.Load(c.DotenvPath)
}

// MustLoadFromDotenv loads path (ODE_DOTENV_PATH, then .env when empty). A missing
// file is not fatal since every key can also come from the environment.
func MustLoadFromDotenv(path string) *DotenvConfig {
	if path == "" {
		path = os.Getenv("ODE_DOTENV_PATH")
	}

	if path == "" {
		path = ".env"
	}

	c := NewDotenvConfig(path)
	if err := c.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Unable to load config %s: %s", path, err)
		}
		log.Infof("No dotenv file at %s, using environment only", path)
	}

	return c
}
