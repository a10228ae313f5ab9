//go:build tools

//go:generate go build -o ./bin/gofumpt mvdan.cc/gofumpt
//go:generate go build -o ./bin/golangci-lint github.com/golangci/golangci-lint/cmd/golangci-lint

// this file pins the formatting and lint tools used in development

package main

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint" // nolint
	_ "mvdan.cc/gofumpt"
)
