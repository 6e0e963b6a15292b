package api

// Route documentation for swagger generation. Handlers live in handlers.go.

// swagger:route GET /health health getHealth
//
// # Check server health
//
// Responses:
//
//	200: healthResponse
func swaggerRouteHealth() {}

// swagger:route POST /kernels/{family} kernels computeKernel
//
// # Compute a kernel matrix
//
// Evaluates the linear, rbf or polynomial kernel between the rows of x and
// the rows of y. When y is omitted the self-kernel of x is returned.
//
// Responses:
//
//	200: kernelResponse
//	400: errorResponse
//	404: errorResponse
//	422: errorResponse
func swaggerRouteComputeKernel() {}

// swagger:route GET /results results listResults
//
// # List stored results
//
// Responses:
//
//	200: resultsResponse
func swaggerRouteListResults() {}

// swagger:route GET /results/{id} results getResult
//
// # Get a stored result
//
// Responses:
//
//	200: resultResponse
//	404: errorResponse
func swaggerRouteGetResult() {}

// swagger:route DELETE /results/{id} results deleteResult
//
// # Delete a stored result
//
// Responses:
//
//	204: noContent
//	404: errorResponse
func swaggerRouteDeleteResult() {}

// swagger:route GET /stats stats getStats
//
// # Execution policy statistics
//
// Responses:
//
//	200: statsResponse
func swaggerRouteStats() {}
