// Package api kernelfn API
//
// kernelfn computes pairwise kernel matrices (linear, RBF, polynomial)
// between two point sets and optionally keeps the results.
//
//	Schemes: http, https
//	Host: localhost:8080
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package api

import (
	"encoding/json"
	"net/http"

	"github.com/dshills/kernelfn/core"
	"gopkg.in/yaml.v3"
)

// swagger:response healthResponse
type swaggerHealthResponse struct {
	// in: body
	Body HealthResponse
}

// swagger:response kernelResponse
type swaggerKernelResponse struct {
	// in: body
	Body KernelResponse
}

// swagger:response resultsResponse
type swaggerResultsResponse struct {
	// in: body
	Body []core.ResultInfo
}

// swagger:response resultResponse
type swaggerResultResponse struct {
	// in: body
	Body core.Result
}

// swagger:response statsResponse
type swaggerStatsResponse struct {
	// in: body
	Body StatsResponse
}

// swagger:response errorResponse
type swaggerErrorResponse struct {
	// in: body
	Body struct {
		Error string `json:"error"`
	}
}

// setupOpenAPI adds the API description endpoints to the server
func (s *Server) setupOpenAPI() {
	s.router.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		w.Write([]byte(openAPIYAML))
	}).Methods("GET")

	s.router.HandleFunc("/openapi.json", s.handleOpenAPIJSON).Methods("GET")
}

// handleOpenAPIJSON serves the OpenAPI document converted from YAML
func (s *Server) handleOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := openAPIJSON()
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load API documentation")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func openAPIJSON() ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(openAPIYAML), &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

const openAPIYAML = `openapi: 3.0.3
info:
  title: kernelfn API
  version: 1.0.0
paths:
  /health:
    get:
      summary: Check server health
      responses:
        "200":
          description: Server is healthy
  /kernels/{family}:
    post:
      summary: Compute a kernel matrix
      parameters:
        - name: family
          in: path
          required: true
          schema:
            type: string
            enum: [linear, rbf, polynomial]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/KernelRequest"
      responses:
        "200":
          description: Kernel matrix
        "400":
          description: Shape, precision or finiteness error
        "404":
          description: Unknown kernel family
        "422":
          description: Invalid kernel parameter
  /results:
    get:
      summary: List stored results
      responses:
        "200":
          description: Result listings, oldest first
  /results/{id}:
    get:
      summary: Get a stored result
      responses:
        "200":
          description: Stored result
        "404":
          description: Result not found
    delete:
      summary: Delete a stored result
      responses:
        "204":
          description: Deleted
        "404":
          description: Result not found
  /stats:
    get:
      summary: Execution policy statistics
      responses:
        "200":
          description: Device information and counters
components:
  schemas:
    Number:
      description: A number, or one of the strings NaN, +Inf, -Inf
      oneOf:
        - type: number
        - type: string
          enum: ["NaN", "+Inf", "-Inf"]
    KernelRequest:
      type: object
      required: [x]
      properties:
        precision:
          type: string
          enum: [float32, float64]
        x:
          type: array
          items:
            type: array
            items:
              $ref: "#/components/schemas/Number"
        y:
          type: array
          items:
            type: array
            items:
              $ref: "#/components/schemas/Number"
        params:
          type: object
          properties:
            scale: {type: number}
            shift: {type: number}
            gamma: {type: number}
            sigma: {type: number}
            degree: {type: integer}
        store:
          type: boolean
        metadata:
          type: object
          additionalProperties: {type: string}
`
