package main

// Config file support. Load a config file from "~/.kuery.toml".

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml"

	"github.com/kqldsl/kuery/internal/lg"
)

type config struct {
	tree *toml.Tree
}

func (c *config) GetBool(key string) (val bool, ok bool) {
	if c.tree == nil {
		return false, false
	}
	item := c.tree.Get(key)
	if item == nil {
		return false, false
	}
	val, ok = item.(bool)
	if !ok {
		lg.Printf("ignore config value: not bool: %s=%v (%T)\n", key, item, item)
		return false, false
	}
	return
}

// GetString gets the value of `key` from the config file if it is a string
// value.
func (c *config) GetString(key string) (val string, ok bool) {
	if c.tree == nil {
		return "", false
	}
	item := c.tree.Get(key)
	if item == nil {
		return "", false
	}
	val, ok = item.(string)
	if !ok {
		lg.Printf("ignore config value: not string: %s=%v (%T)\n", key, item, item)
		return "", false
	}
	return
}

func configFilePath() string {
	var homeEnvVar string
	if runtime.GOOS == "windows" {
		homeEnvVar = "UserProfile"
	} else {
		homeEnvVar = "HOME"
	}
	homeDir, ok := os.LookupEnv(homeEnvVar)
	if !ok {
		return ""
	}
	return homeDir + string(os.PathSeparator) + ".kuery.toml"
}

func loadConfig() (error, *config) {
	cfgPath := configFilePath()
	if cfgPath == "" {
		return nil, &config{}
	}

	tree, err := toml.LoadFile(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file. No worries.
			return nil, &config{}
		}
		return fmt.Errorf("error loading '%s': %s", cfgPath, err), nil
	}

	return nil, &config{tree}
}
