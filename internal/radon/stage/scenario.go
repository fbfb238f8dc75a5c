package stage

import (
	"os"

	"gopkg.in/yaml.v3"
)

// scenario is a YAML-described end-to-end test fixture: a set of
// per-source seeds retrieved via Identity and reduced by AverageMean at
// tally. Mirrors the <config.yaml> loading pattern the teacher CLI uses
// for devnet node configs.
type scenario struct {
	ReturnPolicy string    `yaml:"return_policy"`
	Seeds        []float64 `yaml:"seeds"`
}

func loadScenario(path string) (scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, err
	}
	var s scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return scenario{}, err
	}
	return s, nil
}
