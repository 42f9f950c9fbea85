// Package mocks provides gomock implementations of the core interfaces used
// by handler and dispatcher tests.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=project_mock.go github.com/sevigo/build-warden/internal/core Project
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=helpers_mock.go github.com/sevigo/build-warden/internal/core BuildHelper,SyncHelper,TestHelper
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=allowlist_mock.go github.com/sevigo/build-warden/internal/core Allowlist
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=retrier_mock.go github.com/sevigo/build-warden/internal/core Retrier
