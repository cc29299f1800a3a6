package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid compose.json",
		Detail:   "The compose.json project file is malformed.",
		DocURL:   "https://aem-design.github.io/compose/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://aem-design.github.io/compose/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid merge strategy",
		Detail:   "Merge strategies must be one of append, prepend or replace.",
		DocURL:   "https://aem-design.github.io/compose/errors/E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid base configuration",
		Detail:   "The base webpack configuration file could not be read or decoded.",
		DocURL:   "https://aem-design.github.io/compose/errors/E123",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Not a compose project",
		Detail:   "The current directory is not a compose project. Run this command from a directory with compose.json.",
		DocURL:   "https://aem-design.github.io/compose/errors/E141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Build output failed",
		Detail:   "The composed configuration could not be written to the output directory.",
		DocURL:   "https://aem-design.github.io/compose/errors/E142",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Project already exists",
		Detail:   "The target directory already contains compose.json.",
		DocURL:   "https://aem-design.github.io/compose/errors/E143",
	},

	// ============================================
	// Feature Errors (E200-E209)
	// ============================================

	"E200": {
		Category: CategoryFeature,
		Message:  "Unknown feature",
		Detail:   "The feature identifier is not one of the supported features.",
		DocURL:   "https://aem-design.github.io/compose/errors/E200",
	},
	"E201": {
		Category: CategoryFeature,
		Message:  "Feature construction failed",
		Detail:   "The feature could not be created for the current environment.",
		DocURL:   "https://aem-design.github.io/compose/errors/E201",
	},

	// ============================================
	// Install Errors (E210-E219)
	// ============================================

	"E210": {
		Category: CategoryInstall,
		Message:  "Failed to install dependencies",
		Detail:   "The package manager exited with an error. Nothing was added to the project.",
		DocURL:   "https://aem-design.github.io/compose/errors/E210",
	},
	"E211": {
		Category: CategoryInstall,
		Message:  "Package manager not found",
		Detail:   "The configured package manager is not installed or not in PATH.",
		DocURL:   "https://aem-design.github.io/compose/errors/E211",
	},
	"E212": {
		Category: CategoryInstall,
		Message:  "Tool download failed",
		Detail:   "A standalone tool binary could not be downloaded.",
		DocURL:   "https://aem-design.github.io/compose/errors/E212",
	},

	// ============================================
	// Registry Errors (E220-E229)
	// ============================================

	"E220": {
		Category: CategoryConfig,
		Message:  "Invalid configuration key",
		Detail:   "The requested key is not part of the configuration registry.",
		DocURL:   "https://aem-design.github.io/compose/errors/E220",
	},
	"E221": {
		Category: CategoryConfig,
		Message:  "Invalid webpack configurable",
		Detail:   "The requested configurable does not exist.",
		DocURL:   "https://aem-design.github.io/compose/errors/E221",
	},

	// ============================================
	// Publish Errors (E230-E239)
	// ============================================

	"E230": {
		Category: CategoryPublish,
		Message:  "Publish failed",
		Detail:   "The composed configuration could not be uploaded.",
		DocURL:   "https://aem-design.github.io/compose/errors/E230",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
