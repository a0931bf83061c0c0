package mocks

import (
	"context"
	"errors"

	kdb "github.com/helixlab/helix/pkg/db"
)

type ModelInterface struct {
	Impl struct {
		Find   func(context.Context, kdb.ModelQuery) ([]kdb.Model, error)
		Get    func(context.Context, string) (kdb.Model, error)
		Create func(context.Context, kdb.NewModel) (kdb.Model, error)
		Update func(context.Context, string, kdb.ModelChange) (kdb.Model, error)
		Delete func(context.Context, string) (kdb.Model, error)
		Count  func(context.Context) (int, error)
	}
	Calls struct {
		Find   CallLog[kdb.ModelQuery]
		Get    CallLog[string]
		Create CallLog[kdb.NewModel]
		Update CallLog[struct {
			Id     string
			Change kdb.ModelChange
		}]
		Delete CallLog[string]
		Count  CallLog[struct{}]
	}
}

func NewModelInterface() *ModelInterface {
	return &ModelInterface{}
}

var _ kdb.ModelInterface = &ModelInterface{}

func (m *ModelInterface) Find(ctx context.Context, query kdb.ModelQuery) ([]kdb.Model, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should not be called"))
}

func (m *ModelInterface) Get(ctx context.Context, id string) (kdb.Model, error) {
	m.Calls.Get = append(m.Calls.Get, id)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("it should not be called"))
}

func (m *ModelInterface) Create(ctx context.Context, spec kdb.NewModel) (kdb.Model, error) {
	m.Calls.Create = append(m.Calls.Create, spec)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, spec)
	}
	panic(errors.New("it should not be called"))
}

func (m *ModelInterface) Update(ctx context.Context, id string, change kdb.ModelChange) (kdb.Model, error) {
	m.Calls.Update = append(m.Calls.Update, struct {
		Id     string
		Change kdb.ModelChange
	}{Id: id, Change: change})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, id, change)
	}
	panic(errors.New("it should not be called"))
}

func (m *ModelInterface) Delete(ctx context.Context, id string) (kdb.Model, error) {
	m.Calls.Delete = append(m.Calls.Delete, id)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, id)
	}
	panic(errors.New("it should not be called"))
}

func (m *ModelInterface) Count(ctx context.Context) (int, error) {
	m.Calls.Count = append(m.Calls.Count, struct{}{})
	if m.Impl.Count != nil {
		return m.Impl.Count(ctx)
	}
	panic(errors.New("it should not be called"))
}
