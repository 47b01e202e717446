package eval

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed fixtures/*.txt fixtures/*.json
var fixtureFS embed.FS

// Fixture bundles receipt text with ground truth for evaluation.
type Fixture struct {
	Name        string
	Text        string // raw text (simulates PDF/OCR extraction output)
	GroundTruth *GroundTruth
}

// LoadFixtures loads all embedded fixture pairs (txt + json).
func LoadFixtures() ([]*Fixture, error) {
	names := []string{
		"sectioned_invoice",
		"flat_receipt",
		"ocr_garbled",
		"multi_item_order",
	}

	var fixtures []*Fixture
	for _, name := range names {
		f, err := loadFixture(name)
		if err != nil {
			return nil, fmt.Errorf("load fixture %q: %w", name, err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

func loadFixture(name string) (*Fixture, error) {
	textBytes, err := fixtureFS.ReadFile("fixtures/" + name + ".txt")
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	jsonBytes, err := fixtureFS.ReadFile("fixtures/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}

	var gt GroundTruth
	if err := json.Unmarshal(jsonBytes, &gt); err != nil {
		return nil, fmt.Errorf("parse ground truth: %w", err)
	}

	return &Fixture{
		Name:        name,
		Text:        string(textBytes),
		GroundTruth: &gt,
	}, nil
}
