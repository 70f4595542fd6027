package cel_test

import (
	"context"
	"errors"

	"callog/internal/core/cel"
)

// fakeDirectory is an in-memory DirectoryPort for tests
type fakeDirectory struct {
	lines map[string][]cel.Line
	users map[string]cel.User
	err   error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		lines: map[string][]cel.Line{},
		users: map[string]cel.User{},
	}
}

func (d *fakeDirectory) addLine(name string, lineID int64, userUUID, userfield string) {
	d.lines[name] = append(d.lines[name], cel.Line{
		ID:    lineID,
		Name:  name,
		Users: []cel.User{{UUID: userUUID}},
	})
	d.users[userUUID] = cel.User{UUID: userUUID, UserField: userfield}
}

func (d *fakeDirectory) addEmptyLine(name string, lineID int64) {
	d.lines[name] = append(d.lines[name], cel.Line{ID: lineID, Name: name})
}

func (d *fakeDirectory) ListLines(_ context.Context, name string) ([]cel.Line, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.lines[name], nil
}

func (d *fakeDirectory) GetUser(_ context.Context, uuid string) (cel.User, error) {
	if d.err != nil {
		return cel.User{}, d.err
	}
	u, ok := d.users[uuid]
	if !ok {
		return cel.User{}, errors.New("user not found")
	}
	return u, nil
}
