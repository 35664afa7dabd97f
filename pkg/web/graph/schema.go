// Package graph declares the GraphQL schema and binds its operations to the
// voting service. The schema is built programmatically; the field shapes
// mirror the API contract one to one.
package graph

import (
	"strconv"

	"github.com/graphql-go/graphql"

	"ballot-box/pkg/common/apperrors"
	"ballot-box/pkg/core/model"
	"ballot-box/pkg/core/voting"
)

// NewSchema builds the executable schema around the service.
func NewSchema(svc *voting.Service) (graphql.Schema, error) {
	candidateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Candidate",
		Fields: graphql.Fields{
			"id":                   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"lastName":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"firstName":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"country":              &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"politicalOrientation": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"votes":                &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"candidate": &graphql.Field{
				Type: candidateType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user, ok := p.Source.(*model.User)
					if !ok || user.Candidate == nil {
						return nil, nil
					}
					return user.Candidate, nil
				},
			},
		},
	})

	loggedInUserType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LoggedInUser",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"allCandidatesCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					count, err := svc.CandidatesCount(p.Context)
					if err != nil {
						return nil, err
					}
					return int(count), nil
				},
			},
			"allCandidates": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(candidateType))),
				Args: graphql.FieldConfigArgument{
					"candidateLastName": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lastName, _ := p.Args["candidateLastName"].(string)
					return svc.Candidates(p.Context, lastName)
				},
			},
			"loggedInUser": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user := svc.LoggedInUser(p.Context)
					if user == nil {
						return nil, nil
					}
					return user, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"username":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"passwordConfirmation": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user, err := svc.Register(p.Context,
						p.Args["username"].(string),
						p.Args["password"].(string),
						p.Args["passwordConfirmation"].(string),
					)
					if err != nil {
						return nil, err
					}
					return user, nil
				},
			},
			"login": &graphql.Field{
				Type: loggedInUserType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loggedIn, err := svc.Login(p.Context,
						p.Args["username"].(string),
						p.Args["password"].(string),
					)
					if err != nil {
						return nil, err
					}
					return loggedIn, nil
				},
			},
			"addCandidate": &graphql.Field{
				Type: candidateType,
				Args: graphql.FieldConfigArgument{
					"candidateLastName":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"candidateFirstName":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"country":              &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"politicalOrientation": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					candidate, err := svc.AddCandidate(p.Context, voting.AddCandidateInput{
						LastName:             p.Args["candidateLastName"].(string),
						FirstName:            p.Args["candidateFirstName"].(string),
						Country:              p.Args["country"].(string),
						PoliticalOrientation: p.Args["politicalOrientation"].(string),
					})
					if err != nil {
						return nil, err
					}
					return candidate, nil
				},
			},
			"updateCandidate": &graphql.Field{
				Type: candidateType,
				Args: graphql.FieldConfigArgument{
					"id":                   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"country":              &graphql.ArgumentConfig{Type: graphql.String},
					"politicalOrientation": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id"])
					if err != nil {
						return nil, err
					}
					candidate, err := svc.UpdateCandidate(p.Context, id,
						optionalString(p.Args, "country"),
						optionalString(p.Args, "politicalOrientation"),
					)
					if err != nil {
						return nil, err
					}
					if candidate == nil {
						// Unknown id resolves to null, not an error.
						return nil, nil
					}
					return candidate, nil
				},
			},
			"voteCandidate": &graphql.Field{
				Type: candidateType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id"])
					if err != nil {
						return nil, err
					}
					candidate, err := svc.VoteCandidate(p.Context, id)
					if err != nil {
						return nil, err
					}
					return candidate, nil
				},
			},
			"deleteCandidate": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id"])
					if err != nil {
						return nil, err
					}
					user, err := svc.DeleteCandidate(p.Context, id)
					if err != nil {
						return nil, err
					}
					return user, nil
				},
			},
			"resetAllDocuments": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := svc.Reset(p.Context); err != nil {
						return nil, err
					}
					return nil, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// parseID coerces a GraphQL ID argument into a numeric record id.
func parseID(arg interface{}) (uint, error) {
	switch v := arg.(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, apperrors.InvalidInput("malformed id")
		}
		return uint(id), nil
	case int:
		if v < 0 {
			return 0, apperrors.InvalidInput("malformed id")
		}
		return uint(v), nil
	default:
		return 0, apperrors.InvalidInput("malformed id")
	}
}

func optionalString(args map[string]interface{}, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}
