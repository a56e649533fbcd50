package rtdb

import (
	"errors"

	"google.golang.org/protobuf/types/known/structpb"
)

var ErrBadMessage = errors.New("malformed rtdb message")

// Package describes a deployment package registered with the server.
type Package struct {
	ID         string
	Version    string
	StorageKey string
	URL        string
}

func NewSetRequest(path string, value []byte) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"path":  structpb.NewStringValue(path),
		"value": structpb.NewStringValue(string(value)),
	}}
}

func ParseSetRequest(s *structpb.Struct) (string, []byte, error) {
	path, ok := stringField(s, "path")
	if !ok || path == "" {
		return "", nil, ErrBadMessage
	}
	value, ok := stringField(s, "value")
	if !ok {
		return "", nil, ErrBadMessage
	}
	return path, []byte(value), nil
}

func (p *Package) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":          structpb.NewStringValue(p.ID),
		"version":     structpb.NewStringValue(p.Version),
		"storage_key": structpb.NewStringValue(p.StorageKey),
		"url":         structpb.NewStringValue(p.URL),
	}}
}

func PackageFromStruct(s *structpb.Struct) (*Package, error) {
	id, ok := stringField(s, "id")
	if !ok || id == "" {
		return nil, ErrBadMessage
	}
	p := &Package{ID: id}
	p.Version, _ = stringField(s, "version")
	p.StorageKey, _ = stringField(s, "storage_key")
	p.URL, _ = stringField(s, "url")
	return p, nil
}

func stringField(s *structpb.Struct, name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.GetFields()[name]
	if !ok {
		return "", false
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return sv.StringValue, true
}
