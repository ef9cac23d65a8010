package mapper

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type PersonEntity struct {
	Id   int
	Name string
}

type PersonDto struct {
	Id       int
	FullName string
}

type Address struct {
	Street  string
	City    string
	Country string
}

type AddressDto struct {
	City    string
	Country string
}

type Person struct {
	ID       int
	Name     string
	Age      int32
	Address  *Address
	Tags     []string
	Nickname *string
}

type PersonView struct {
	ID             int64
	Name           string
	Age            int
	AddressCity    string
	AddressCountry string
	Tags           []string
	Nickname       string
	Source         string
	Note           string
}

type Employee struct {
	Name string
	Home *Address
}

type EmployeeDto struct {
	Name string
	Home *AddressDto
}

type Team struct {
	Name    string
	Members []PersonEntity
}

type TeamDto struct {
	Name    string
	Members []PersonDto
}

type BaseSource struct {
	ID    int
	First string
	Last  string
}

type DerivedSource struct {
	BaseSource
	Extra string
}

type BaseDest struct {
	ID   int
	Name string
}

type DerivedDest struct {
	BaseDest
	Extra string
	Code  string
}

// newRegistry returns a registry logging to the test output.
func newRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()

	return NewRegistry(append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

// observedRegistry returns a registry whose log entries can be inspected.
func observedRegistry(t *testing.T, opts ...Option) (*Registry, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)

	return NewRegistry(append([]Option{WithLogger(zap.New(core))}, opts...)...), logs
}

func ptr[T any](v T) *T {
	return &v
}
