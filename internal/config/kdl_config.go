package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Load reads configuration from the given KDL file. An empty path means
// DefaultConfigFile; a missing file yields the defaults. The result is
// always validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	cfg := Default()

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := parseKDL(string(content), cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "matching":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "similarity_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Matching.SimilarityThreshold = v
					}
				case "auto_update":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Matching.AutoUpdate = b
					}
				case "max_suggestions":
					if v, ok := firstIntArg(cn); ok {
						cfg.Matching.MaxSuggestions = v
					}
				}
			}
		case "store":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "path":
					if s, ok := firstStringArg(cn); ok {
						cfg.Store.Path = s
					}
				case "cache_ttl_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Store.CacheTTLMs = v
					}
				case "watch":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Store.Watch = b
					}
				}
			}
		case "server":
			for _, cn := range n.Children {
				if nodeName(cn) == "addr" {
					if s, ok := firstStringArg(cn); ok {
						cfg.Server.Addr = s
					}
				}
			}
		case "abbreviations":
			// abbreviations { btn "button" "bottom"; acc "accessibility" }
			for _, cn := range n.Children {
				abbr := nodeName(cn)
				if abbr == "" {
					continue
				}
				cfg.Abbreviations[strings.ToLower(abbr)] = collectStringArgs(cn)
			}
		}
	}

	return nil
}

// Helper functions leveraging the kdl-go document model.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
