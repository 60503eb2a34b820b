package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Model is a named canonical system.
type Model struct {
	Name        string
	Expression  string
	Description string
	// Expect lists the events the detector reports for the default preset.
	Expect []dynamo.BifurcationType
}

type Registry struct {
	models map[string]Model
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]Model)}

	r.Register(Model{
		Name: "saddle_node", Expression: "r + x^2",
		Description: "pair of equilibria annihilates at r = 0",
		Expect:      []dynamo.BifurcationType{dynamo.SaddleNode},
	})
	r.Register(Model{
		Name: "transcritical", Expression: "r*x - x^2",
		Description: "equilibria x = 0 and x = r exchange stability",
		Expect:      []dynamo.BifurcationType{dynamo.Transcritical},
	})
	r.Register(Model{
		Name: "pitchfork", Expression: "r*x - x^3",
		Description: "supercritical pitchfork, two stable branches for r > 0",
		Expect:      []dynamo.BifurcationType{dynamo.Pitchfork},
	})
	r.Register(Model{
		Name: "subcritical", Expression: "r*x + x^3 - x^5",
		Description: "subcritical pitchfork stabilised by a quintic term",
		Expect:      []dynamo.BifurcationType{dynamo.SaddleNode, dynamo.SaddleNode},
	})
	r.Register(Model{
		Name: "imperfect", Expression: "0.05 + r*x - x^3",
		Description: "pitchfork broken by a constant bias; its fold changes the count 1 -> 3",
		Expect:      []dynamo.BifurcationType{dynamo.Pitchfork},
	})
	r.Register(Model{
		Name: "harvest", Expression: "x*(1 - x) - r",
		Description: "logistic growth with constant harvesting",
		Expect:      []dynamo.BifurcationType{dynamo.SaddleNode},
	})
	r.Register(Model{
		Name: "cosh", Expression: "r - cosh(x)",
		Description: "non-polynomial saddle-node at r = 1",
		Expect:      []dynamo.BifurcationType{dynamo.SaddleNode},
	})
	r.Register(Model{
		Name: "exp", Expression: "x*(r - exp(x))",
		Description: "non-polynomial transcritical at r = 1",
		Expect:      []dynamo.BifurcationType{dynamo.Transcritical},
	})
	r.Register(Model{
		Name: "empty", Expression: "-x^2 - 1",
		Description: "no real equilibria",
		Expect:      []dynamo.BifurcationType{},
	})

	return r
}

func (r *Registry) Register(m Model) {
	r.models[m.Name] = m
}

func (r *Registry) GetModel(name string) (Model, error) {
	m, ok := r.models[name]
	if !ok {
		return Model{}, fmt.Errorf("unknown model: %s", name)
	}
	return m, nil
}

// Field builds the field of a registered model.
func (r *Registry) Field(name string) (*dynamo.ScalarField, error) {
	m, err := r.GetModel(name)
	if err != nil {
		return nil, err
	}
	return dynamo.NewScalarField(m.Expression, dynamo.DefaultVariable, dynamo.DefaultParameter)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
