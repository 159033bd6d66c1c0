package entities

// EntryPointType says whether the manifest entry point is a module exposing
// functions or a class exposing methods.
type EntryPointType string

const (
	EntryPointTypeModule EntryPointType = "module"
	EntryPointTypeClass  EntryPointType = "class"
)

// FunctionConfig describes one callable the serving runtime invokes, with its
// argument names drawn from a closed vocabulary.
type FunctionConfig struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// ModelConfig is the parsed model_config.json manifest users ship inside ZIP
// deployments. It tells the platform how to load and invoke the model.
type ModelConfig struct {
	Name           string          `json:"name"`
	Version        string          `json:"version"`
	Framework      string          `json:"framework"`
	EntryPoint     string          `json:"entry_point"`
	EntryPointType EntryPointType  `json:"entry_point_type"`
	ClassName      string          `json:"class_name,omitempty"`
	Load           *FunctionConfig `json:"load"`
	Predict        *FunctionConfig `json:"predict"`
	ModelFile      string          `json:"model_file"`
	AuxiliaryFiles []string        `json:"auxiliary_files,omitempty"`
	Description    string          `json:"description,omitempty"`
	Author         string          `json:"author,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
}

// Argument vocabularies the platform can satisfy at runtime.
var (
	ValidLoadArgs    = map[string]bool{"model_path": true, "model_dir": true}
	ValidPredictArgs = map[string]bool{"input_data": true, "data": true, "model": true}
)
