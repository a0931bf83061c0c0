package mocks

import (
	"context"
	"errors"

	kdb "github.com/helixlab/helix/pkg/db"
)

type DatasetInterface struct {
	Impl struct {
		Find      func(context.Context, kdb.DatasetQuery) ([]kdb.Dataset, error)
		Get       func(context.Context, string) (kdb.Dataset, error)
		Create    func(context.Context, kdb.NewDataset) (kdb.Dataset, error)
		Update    func(context.Context, string, kdb.DatasetChange) (kdb.Dataset, error)
		SetStatus func(context.Context, string, kdb.DatasetStatus) error
		Delete    func(context.Context, string) (kdb.Dataset, error)
	}
	Calls struct {
		Find   CallLog[kdb.DatasetQuery]
		Get    CallLog[string]
		Create CallLog[kdb.NewDataset]
		Update CallLog[struct {
			Id     string
			Change kdb.DatasetChange
		}]
		SetStatus CallLog[struct {
			Id     string
			Status kdb.DatasetStatus
		}]
		Delete CallLog[string]
	}
}

func NewDatasetInterface() *DatasetInterface {
	return &DatasetInterface{}
}

var _ kdb.DatasetInterface = &DatasetInterface{}

func (m *DatasetInterface) Find(ctx context.Context, query kdb.DatasetQuery) ([]kdb.Dataset, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should not be called"))
}

func (m *DatasetInterface) Get(ctx context.Context, id string) (kdb.Dataset, error) {
	m.Calls.Get = append(m.Calls.Get, id)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("it should not be called"))
}

func (m *DatasetInterface) Create(ctx context.Context, spec kdb.NewDataset) (kdb.Dataset, error) {
	m.Calls.Create = append(m.Calls.Create, spec)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, spec)
	}
	panic(errors.New("it should not be called"))
}

func (m *DatasetInterface) Update(ctx context.Context, id string, change kdb.DatasetChange) (kdb.Dataset, error) {
	m.Calls.Update = append(m.Calls.Update, struct {
		Id     string
		Change kdb.DatasetChange
	}{Id: id, Change: change})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, id, change)
	}
	panic(errors.New("it should not be called"))
}

func (m *DatasetInterface) SetStatus(ctx context.Context, id string, status kdb.DatasetStatus) error {
	m.Calls.SetStatus = append(m.Calls.SetStatus, struct {
		Id     string
		Status kdb.DatasetStatus
	}{Id: id, Status: status})
	if m.Impl.SetStatus != nil {
		return m.Impl.SetStatus(ctx, id, status)
	}
	panic(errors.New("it should not be called"))
}

func (m *DatasetInterface) Delete(ctx context.Context, id string) (kdb.Dataset, error) {
	m.Calls.Delete = append(m.Calls.Delete, id)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, id)
	}
	panic(errors.New("it should not be called"))
}
