package endpoints

import (
	"github.com/fieldlens/fieldlens/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Document endpoints
		&UploadEndpoint{},
		&ListDocumentsEndpoint{},
		&GetDocumentEndpoint{},
		&ProcessDocumentEndpoint{},
		&ReviewEndpoint{},

		// Export endpoints
		&ExportCSVEndpoint{},
		&ExportXLSXEndpoint{},
		&ExportJSONEndpoint{},

		// Schema endpoints
		&GetSchemaEndpoint{},
		&UpdateSchemaEndpoint{},
		&ListPresetsEndpoint{},
	}
}
