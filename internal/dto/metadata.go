package dto

// Document is the on-disk shape of a task tree file.
// It uses "mapstructure" tags so YAML and JSON sources decode alike.
type Document struct {
	Name   string                  `json:"name" mapstructure:"name"`
	Schema map[string]string       `json:"schema" mapstructure:"schema"`
	State  map[string]any          `json:"state" mapstructure:"state"`
	Tasks  map[string]TaskMetadata `json:"tasks" mapstructure:"tasks"`
	Root   TaskMetadata            `json:"root" mapstructure:"root"`
}

// TaskMetadata describes one task. Type is one of primitive, selector or
// sequence and defaults to primitive. Use refers to an entry of Document.Tasks
// instead of declaring the task inline.
type TaskMetadata struct {
	Name     string              `json:"name" mapstructure:"name"`
	Type     string              `json:"type" mapstructure:"type"`
	Use      string              `json:"use" mapstructure:"use"`
	Requires []ConditionMetadata `json:"requires" mapstructure:"requires"`
	ValidIf  string              `json:"valid_if" mapstructure:"valid_if"`
	Effects  []EffectMetadata    `json:"effects" mapstructure:"effects"`
	Do       string              `json:"do" mapstructure:"do"`
	Children []TaskMetadata      `json:"children" mapstructure:"children"`
}

// Operand is the right-hand side of a condition or effect.
// Exactly one of Value, Ref or Calc is expected; none means nil.
type Operand struct {
	Value any       `json:"value" mapstructure:"value"`
	Ref   string    `json:"ref" mapstructure:"ref"`
	Calc  *CalcMeta `json:"calc" mapstructure:"calc"`
}

// CalcMeta computes Key Op operand without writing Key.
type CalcMeta struct {
	Key string `json:"key" mapstructure:"key"`
	Op  string `json:"op" mapstructure:"op"`

	Operand `mapstructure:",squash"`
}

type ConditionMetadata struct {
	Key        string `json:"key" mapstructure:"key"`
	Cmp        string `json:"cmp" mapstructure:"cmp"`
	BestEffort bool   `json:"best_effort" mapstructure:"best_effort"`

	Operand `mapstructure:",squash"`
}

type EffectMetadata struct {
	Key string `json:"key" mapstructure:"key"`
	Op  string `json:"op" mapstructure:"op"`

	Operand `mapstructure:",squash"`
}
