package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Navigation Errors (E101-E119)
	// ============================================

	"E101": {
		Category: CategoryNavigation,
		Message:  "Page not registered",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E101",
	},
	"E102": {
		Category: CategoryNavigation,
		Message:  "Tab page required",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E102",
	},
	"E103": {
		Category: CategoryNavigation,
		Message:  "Tab page not allowed",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E103",
	},
	"E104": {
		Category: CategoryNavigation,
		Message:  "Page stack limit reached",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E104",
	},
	"E105": {
		Category: CategoryNavigation,
		Message:  "Cannot navigate back",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E105",
	},
	"E106": {
		Category: CategoryValidation,
		Message:  "Invalid page URL",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E106",
	},
	"E107": {
		Category: CategoryNavigation,
		Message:  "Page load hook failed",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E107",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid page manifest",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E122",
	},

	// ============================================
	// Bridge Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryProtocol,
		Message:  "Runtime not connected",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E160",
	},
	"E161": {
		Category: CategoryProtocol,
		Message:  "Runtime rejected command",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E161",
	},
	"E162": {
		Category: CategoryProtocol,
		Message:  "Invalid bridge frame",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E162",
	},
	"E163": {
		Category: CategoryProtocol,
		Message:  "Runtime already connected",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E163",
	},

	// ============================================
	// CLI Errors (E180-E189)
	// ============================================

	"E180": {
		Category: CategoryCLI,
		Message:  "Invalid query flag",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E180",
	},
	"E181": {
		Category: CategoryValidation,
		Message:  "Invalid control request",
		DocURL:   "https://vango.dev/docs/uniroute/errors/E181",
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
