package mcp

var zero = 0.0

// matrixProperty describes a point set argument
func matrixProperty(description string) Property {
	return Property{
		Type:        "array",
		Description: description,
		Items: &Property{
			Type: "array",
			Items: &Property{
				Type:        "number",
				Description: `A number, or one of "NaN", "+Inf", "-Inf"`,
			},
		},
	}
}

// GetTools returns all available MCP tools
func GetTools() []Tool {
	return []Tool{
		{
			Name:        "compute_kernel",
			Description: "Compute the kernel matrix K[i][j] = k(x_i, y_j) for the linear, rbf or polynomial kernel",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"family": {
						Type:        "string",
						Description: "Kernel family",
						Enum:        []string{"linear", "rbf", "polynomial"},
					},
					"precision": {
						Type:        "string",
						Description: "Floating precision of the computation",
						Enum:        []string{"float32", "float64"},
						Default:     "float64",
					},
					"x": matrixProperty("Rows of X, one point per row"),
					"y": matrixProperty("Rows of Y; omit to compute the self-kernel of X"),
					"scale": {
						Type:        "number",
						Description: "Scale applied to the dot product (linear, polynomial)",
						Default:     1.0,
					},
					"shift": {
						Type:        "number",
						Description: "Shift added to the scaled dot product (linear, polynomial)",
						Default:     0.0,
					},
					"gamma": {
						Type:        "number",
						Description: "RBF gamma; defaults to 1/features",
						Minimum:     &zero,
					},
					"sigma": {
						Type:        "number",
						Description: "RBF bandwidth, alternative to gamma",
						Minimum:     &zero,
					},
					"degree": {
						Type:        "integer",
						Description: "Polynomial degree",
						Default:     3,
						Minimum:     &zero,
					},
					"store": {
						Type:        "boolean",
						Description: "Keep the result and return its ID",
						Default:     false,
					},
					"metadata": {
						Type:        "object",
						Description: "String metadata stored with the result",
					},
				},
				Required: []string{"family", "x"},
			},
		},
		{
			Name:        "get_result",
			Description: "Get a stored kernel result by ID",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id": {
						Type:        "string",
						Description: "Result ID",
					},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "list_results",
			Description: "List stored kernel results, oldest first",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{},
			},
		},
		{
			Name:        "delete_result",
			Description: "Delete a stored kernel result",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id": {
						Type:        "string",
						Description: "Result ID",
					},
				},
				Required: []string{"id"},
			},
		},
	}
}
