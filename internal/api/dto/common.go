// Package dto provides request and response types for the humidor API.
// These types are used by huma to generate OpenAPI documentation.
package dto

// ListResponse is a generic list response.
type ListResponse[T any] struct {
	Items []T `json:"items" doc:"List of items"`
	Total int `json:"total" doc:"Number of items"`
}

// NewListResponse wraps items, never returning a null list.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

// IDPath is the {id} path parameter shared by item routes.
type IDPath struct {
	ID string `path:"id" doc:"Resource ID"`
}
