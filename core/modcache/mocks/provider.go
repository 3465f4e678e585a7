package mocks

import (
	"context"
	"io"

	"content-cache/core/content"

	"github.com/stretchr/testify/mock"
)

// Provider is a mock implementation of modcache.Provider
type Provider struct {
	mock.Mock
}

func (m *Provider) CreateGroup(name string, global bool) error {
	args := m.Called(name, global)
	return args.Error(0)
}

func (m *Provider) AddLocation(path string, typ content.BundleType, group string) error {
	args := m.Called(path, typ, group)
	return args.Error(0)
}

func (m *Provider) InitialiseGroup(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *Provider) QueueInitialiseGroup(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *Provider) ResourceExists(group, name string) bool {
	args := m.Called(group, name)
	return args.Bool(0)
}

func (m *Provider) OpenResource(group, name string) (io.ReadCloser, error) {
	args := m.Called(group, name)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) DestroyGroup(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// Mirror is a mock implementation of modcache.ThumbnailMirror
type Mirror struct {
	mock.Mock
}

func (m *Mirror) Upload(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *Mirror) Remove(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
