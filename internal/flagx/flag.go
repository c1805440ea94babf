// Package flagx holds the small amount of flag plumbing shared by the server,
// the CLI and the key tool: picking out only the flags a component owns and
// loading the optional config file named by -c/-config.
package flagx

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilterArgs keeps only the allowed flags (and their values) from args.
// Both "-c conf.json" and "--config=conf.json" forms are recognised.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}
	return filtered
}

// ConfigFileFlag returns the value of -c or -config from args, or "".
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}

// JsonConfigFlags is ConfigFileFlag applied to the process arguments.
func JsonConfigFlags() string {
	return ConfigFileFlag(os.Args[1:])
}

// DecodeConfigFile reads path into dst. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func DecodeConfigFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, dst)
	default:
		err = json.Unmarshal(data, dst)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}
