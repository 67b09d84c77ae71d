package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The routemount configuration file could not be parsed.",
	},
	"E101": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "No routemount.json or routemount.yaml was found.",
		Suggestion: "Create routemount.json or pass the settings as flags",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port must be between 0 and 65535.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid route extension",
		Detail:   "The source-file extension must start with a dot, e.g. \".js\".",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid metrics path",
		Detail:   "The metrics path must start with \"/\".",
	},
	"E105": {
		Category:   CategoryConfig,
		Message:    "Unsupported configuration format",
		Detail:     "Configuration files must end in .json, .yaml or .yml.",
		Suggestion: "Rename the file or convert it to JSON",
	},
	"E106": {
		Category:   CategoryConfig,
		Message:    "Configuration file already exists",
		Suggestion: "Use --force to overwrite it",
	},

	// ============================================
	// Scan Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryScan,
		Message:  "Route scan failed",
		Detail:   "The route directory could not be traversed.",
	},
	"E201": {
		Category:   CategoryScan,
		Message:    "Route directory not found",
		Suggestion: "Check the root directory, or create it",
	},
	"E202": {
		Category:   CategoryScan,
		Message:    "Irregular entry in route tree",
		Detail:     "Route trees may only contain files, directories and symlinks that resolve to them without looping.",
		Suggestion: "Remove the entry or list it in .routeignore",
	},
	"E203": {
		Category: CategoryScan,
		Message:  "Invalid ignore file",
		Detail:   "The .routeignore file could not be read or parsed.",
	},
	"E204": {
		Category:   CategoryScan,
		Message:    "Bucket listing failed",
		Detail:     "The S3 route tree could not be listed.",
		Suggestion: "Check the bucket name, region and credentials",
	},
	"E205": {
		Category:   CategoryScan,
		Message:    "S3 client configuration failed",
		Detail:     "AWS settings are read from the environment, ~/.aws/config and ~/.aws/credentials.",
		Suggestion: "Set --s3-region or AWS_REGION, or pick a profile with --s3-profile",
	},

	// ============================================
	// Mount and Serve Errors (E300-E399)
	// ============================================

	"E300": {
		Category: CategoryMount,
		Message:  "Route mount failed",
	},
	"E301": {
		Category:   CategoryMount,
		Message:    "No handler for route file",
		Detail:     "A route file was discovered but nothing is registered to serve it.",
		Suggestion: "Register a handler for the file or list it in .routeignore",
	},
	"E310": {
		Category:   CategoryServe,
		Message:    "Server failed",
		Suggestion: "Check that the address is free",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
