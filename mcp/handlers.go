package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dshills/kernelfn/core"
	"github.com/google/uuid"
)

// decodeArgs converts loosely typed tool arguments into a struct
func decodeArgs(args map[string]interface{}, v interface{}) error {
	jsonData, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}
	if err := json.Unmarshal(jsonData, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// jsonContent wraps a payload as a text tool result
func jsonContent(v interface{}) (*ToolCallResponse, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &ToolCallResponse{
		Content: []ToolContent{
			{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

// ComputeKernelHandler handles the compute_kernel tool
type ComputeKernelHandler struct {
	evaluator     *core.Evaluator
	store         core.ResultStore
	requireFinite bool
}

// Execute evaluates a kernel matrix
func (h *ComputeKernelHandler) Execute(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error) {
	var kernelArgs ComputeKernelArgs
	if err := decodeArgs(args, &kernelArgs); err != nil {
		return nil, err
	}

	if kernelArgs.Store && h.store == nil {
		return nil, fmt.Errorf("result store not configured")
	}

	params, err := core.ParamsSpec{
		Family: kernelArgs.Family,
		Scale:  kernelArgs.Scale,
		Shift:  kernelArgs.Shift,
		Gamma:  kernelArgs.Gamma,
		Sigma:  kernelArgs.Sigma,
		Degree: kernelArgs.Degree,
	}.Params()
	if err != nil {
		return nil, err
	}

	precision, err := core.ParsePrecision(kernelArgs.Precision)
	if err != nil {
		return nil, err
	}

	x, err := core.PointSetFromRows(core.NumberRows(kernelArgs.X), precision)
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	var y *core.PointSet
	if kernelArgs.Y != nil {
		if y, err = core.PointSetFromRows(core.NumberRows(kernelArgs.Y), precision); err != nil {
			return nil, fmt.Errorf("y: %w", err)
		}
	}

	if h.requireFinite {
		for _, ps := range []*core.PointSet{x, y} {
			if ps == nil {
				continue
			}
			if err := core.CheckFinite(ps); err != nil {
				return nil, err
			}
		}
	}

	matrix, err := h.evaluator.Evaluate(ctx, x, y, params)
	if err != nil {
		return nil, err
	}

	result := ComputeKernelResult{
		Params: core.SpecOf(params),
		Matrix: matrix,
	}

	if kernelArgs.Store {
		stored := core.Result{
			ID:        uuid.New().String(),
			Params:    result.Params,
			Matrix:    matrix,
			CreatedAt: time.Now().UTC(),
			Metadata:  kernelArgs.Metadata,
		}
		if err := h.store.SaveResult(ctx, stored); err != nil {
			return nil, fmt.Errorf("failed to store result: %w", err)
		}
		result.ID = stored.ID
	}

	return jsonContent(result)
}

// GetResultHandler handles the get_result tool
type GetResultHandler struct {
	store core.ResultStore
}

// Execute loads a stored result
func (h *GetResultHandler) Execute(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error) {
	var idArgs ResultIDArgs
	if err := decodeArgs(args, &idArgs); err != nil {
		return nil, err
	}
	if idArgs.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	result, err := h.store.LoadResult(ctx, idArgs.ID)
	if err != nil {
		return nil, err
	}

	return jsonContent(result)
}

// ListResultsHandler handles the list_results tool
type ListResultsHandler struct {
	store core.ResultStore
}

// Execute lists stored results
func (h *ListResultsHandler) Execute(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error) {
	infos, err := h.store.ListResults(ctx)
	if err != nil {
		return nil, err
	}

	return jsonContent(infos)
}

// DeleteResultHandler handles the delete_result tool
type DeleteResultHandler struct {
	store core.ResultStore
}

// Execute deletes a stored result
func (h *DeleteResultHandler) Execute(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error) {
	var idArgs ResultIDArgs
	if err := decodeArgs(args, &idArgs); err != nil {
		return nil, err
	}
	if idArgs.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	if err := h.store.DeleteResult(ctx, idArgs.ID); err != nil {
		return nil, err
	}

	return jsonContent(map[string]interface{}{
		"id":      idArgs.ID,
		"deleted": true,
	})
}
