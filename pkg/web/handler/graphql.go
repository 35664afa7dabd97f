package handler

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/graphql-go/graphql"

	"ballot-box/pkg/core/voting"
	"ballot-box/pkg/web/graph"
)

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQLHandler serves the API schema on a single endpoint. Execution
// failures travel in the response body; the HTTP status stays 200 as GraphQL
// clients expect.
type GraphQLHandler struct {
	schema graphql.Schema
}

func NewGraphQLHandler(svc *voting.Service) (*GraphQLHandler, error) {
	schema, err := graph.NewSchema(svc)
	if err != nil {
		return nil, err
	}
	return &GraphQLHandler{schema: schema}, nil
}

// Serve handles POST (JSON body) and GET (query parameter) requests.
func (h *GraphQLHandler) Serve(c context.Context, ctx *app.RequestContext) {
	var req graphqlRequest

	if string(ctx.Method()) == "GET" {
		req.Query = ctx.Query("query")
		req.OperationName = ctx.Query("operationName")
	} else if body := ctx.Request.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			ctx.JSON(400, utils.H{"error": "malformed request body"})
			return
		}
	}

	if req.Query == "" {
		ctx.JSON(400, utils.H{"error": "query is required"})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        c,
	})

	ctx.JSON(200, result)
}
