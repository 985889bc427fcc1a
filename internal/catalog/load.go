package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/common"
)

//go:embed default_rules.yml
var defaultRules []byte

type rawCatalog struct {
	// kept as a node so supplier order survives decoding
	SupplierAlias yaml.Node `yaml:"supplier_alias"`
	ProductRules  []rawRule `yaml:"product_rules"`
}

type rawRule struct {
	Match    []string `yaml:"match"`
	Category string   `yaml:"category"`
	IVARate  *float64 `yaml:"iva_rate"`
	Unit     string   `yaml:"unit"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultRules)
}

// Load reads a YAML catalog from path. An empty path returns the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("CATALOG_ERROR", fmt.Sprintf("read %s", path), fmt.Errorf("%w: %w", common.ErrCatalog, err))
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, catalogError("malformed yaml", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, catalogError("unsupported yaml content", err)
	}
	if err := validateDocument(asJSON); err != nil {
		return nil, catalogError("invalid catalog", err)
	}

	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, catalogError("malformed yaml", err)
	}

	suppliers, err := decodeAliases(&raw.SupplierAlias)
	if err != nil {
		return nil, catalogError("invalid supplier_alias", err)
	}

	rules := make([]ProductRule, 0, len(raw.ProductRules))
	for _, r := range raw.ProductRules {
		rate := constants.DefaultIVARate
		if r.IVARate != nil {
			rate = *r.IVARate
		}
		rules = append(rules, ProductRule{
			Match:    r.Match,
			Category: r.Category,
			IVARate:  rate,
			Unit:     r.Unit,
		})
	}
	return New(suppliers, rules), nil
}

func decodeAliases(node *yaml.Node) ([]SupplierAlias, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping, got yaml kind %d", node.Kind)
	}
	seen := make(map[constants.SupplierID]struct{}, len(node.Content)/2)
	out := make([]SupplierAlias, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		id := constants.CanonicalSupplier(node.Content[i].Value)
		if id == constants.SupplierUnknown {
			return nil, fmt.Errorf("line %d: %q is reserved for unknown suppliers", node.Content[i].Line, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("line %d: duplicate supplier %q", node.Content[i].Line, id)
		}
		seen[id] = struct{}{}

		var aliases []string
		if err := node.Content[i+1].Decode(&aliases); err != nil {
			return nil, fmt.Errorf("supplier %q: %w", id, err)
		}
		out = append(out, SupplierAlias{Supplier: id, Aliases: aliases})
	}
	return out, nil
}

func catalogError(msg string, cause error) error {
	return common.NewAppError("CATALOG_ERROR", msg, fmt.Errorf("%w: %w", common.ErrCatalog, cause))
}
