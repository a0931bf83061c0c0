package trainsvc

import (
	"context"
	"errors"
	"strings"
)

type Mock struct {
	Root string

	Impl struct {
		StartTraining func(context.Context, StartRequest) (Response, error)
	}
	Calls struct {
		StartTraining []StartRequest
	}
}

var _ Client = &Mock{}

func NewMock(root string) *Mock {
	return &Mock{Root: root}
}

func (m *Mock) StartTraining(ctx context.Context, req StartRequest) (Response, error) {
	m.Calls.StartTraining = append(m.Calls.StartTraining, req)
	if m.Impl.StartTraining != nil {
		return m.Impl.StartTraining(ctx, req)
	}
	panic(errors.New("it should not be called"))
}

func (m *Mock) Endpoint(elem ...string) string {
	return strings.Join(append([]string{strings.TrimSuffix(m.Root, "/")}, elem...), "/")
}
