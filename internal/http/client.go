package http

import (
	"net/http"
)

//go:generate go tool mockgen --build_flags=--mod=mod -destination mock/mock.go -package mock . HTTPDoer

// HTTPDoer interface for making HTTP requests
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
