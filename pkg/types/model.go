package types

// ModelState is the lifecycle state of a model on the remote server.
type ModelState string

const (
	StateUnloaded   ModelState = "unloaded"
	StateLoading    ModelState = "loading"
	StateReady      ModelState = "ready"
	StateLoadFailed ModelState = "load_failed"
)

// ModelIndexEntry is one row of the server's model repository index.
type ModelIndexEntry struct {
	Name  string     `json:"name"`
	State ModelState `json:"state,omitempty"`
}

// InstanceGroup describes one execution group in a model's server config.
type InstanceGroup struct {
	Count int   `json:"count"`
	GPUs  []int `json:"gpus"`
}

// ModelConfig is the subset of the server-side model configuration the client
// inspects. Concurrency is the sum of count × GPUs across instance groups.
type ModelConfig struct {
	InstanceGroups []InstanceGroup `json:"instance_group"`
}

// Concurrency returns the number of generations the server can run in
// parallel for this model.
func (c ModelConfig) Concurrency() int {
	n := 0
	for _, g := range c.InstanceGroups {
		n += g.Count * len(g.GPUs)
	}
	return n
}
