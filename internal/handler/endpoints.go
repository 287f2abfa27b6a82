package handler

// endpointParam documents a query parameter.
type endpointParam struct {
	Name        string
	Type        string
	Description string
	Example     string
}

// endpointDoc is one entry of the API catalog shown on the dashboard and
// exported as a Postman collection.
type endpointDoc struct {
	Name        string
	Method      string
	Path        string
	Description string
	Auth        bool
	Params      []endpointParam
	Body        string
	Response    string
}

const samplePageJSON = `{
  "id": 1,
  "storeId": 1,
  "title": "About Us",
  "layout": "1column",
  "urlKey": "about-us",
  "content": "About us page content...",
  "isActive": true,
  "createdAt": "2024-01-01T00:00:00Z",
  "updatedAt": "2024-01-01T00:00:00Z"
}`

var endpointCatalog = []endpointDoc{
	{
		Name:        "List CMS pages",
		Method:      "GET",
		Path:        "/api/cms-pages",
		Description: "Retrieve a paginated list of CMS pages with optional filtering",
		Auth:        true,
		Params: []endpointParam{
			{Name: "page", Type: "integer", Description: "Page number (default: 1)", Example: "1"},
			{Name: "perPage", Type: "integer", Description: "Items per page (default: 15, max: 100)", Example: "15"},
			{Name: "storeId", Type: "integer", Description: "Filter by store ID", Example: "1"},
			{Name: "isActive", Type: "boolean", Description: "Filter by active status", Example: "true"},
		},
		Response: `{
  "data": [
    { "id": 1, "storeId": 1, "title": "About Us", "urlKey": "about-us", "isActive": true }
  ],
  "meta": { "currentPage": 1, "perPage": 15, "total": 1, "lastPage": 1 }
}`,
	},
	{
		Name:        "Create CMS page",
		Method:      "POST",
		Path:        "/api/cms-pages",
		Description: "Create a new CMS page",
		Auth:        true,
		Body: `{
  "storeId": 1,
  "title": "New Page Title",
  "layout": "1column",
  "urlKey": "new-page-url",
  "content": "Page content here...",
  "isActive": true
}`,
		Response: samplePageJSON,
	},
	{
		Name:        "Get CMS page",
		Method:      "GET",
		Path:        "/api/cms-pages/{id}",
		Description: "Retrieve a specific CMS page by ID",
		Auth:        true,
		Response:    samplePageJSON,
	},
	{
		Name:        "Update CMS page",
		Method:      "PUT",
		Path:        "/api/cms-pages/{id}",
		Description: "Update an existing CMS page; only the submitted fields change",
		Auth:        true,
		Body: `{
  "title": "Updated Page Title",
  "content": "Updated content...",
  "isActive": false
}`,
		Response: samplePageJSON,
	},
	{
		Name:        "Delete CMS page",
		Method:      "DELETE",
		Path:        "/api/cms-pages/{id}",
		Description: "Delete a CMS page permanently",
		Auth:        true,
		Response:    "204 No Content",
	},
	{
		Name:        "CMS page statistics",
		Method:      "GET",
		Path:        "/api/cms-pages/stats",
		Description: "Get total, active and inactive page counts",
		Auth:        true,
		Response: `{
  "totalPages": 3,
  "activePages": 2,
  "inactivePages": 1
}`,
	},
	{
		Name:        "Health check",
		Method:      "GET",
		Path:        "/api/health",
		Description: "Service and database health; no authentication required",
		Response: `{
  "status": "healthy",
  "timestamp": "2024-01-01T00:00:00.000Z",
  "service": "CMS Pages API",
  "version": "1.0.0"
}`,
	},
}
