package cel

import (
	"context"
	"strings"
)

// Role marks which side of the call a participant belongs to
type Role string

// Participant roles
const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
)

// Line is a directory line record
type Line struct {
	ID    int64
	Name  string
	Users []User
}

// User is a directory user record
type User struct {
	UUID      string
	UserField string
}

// DirectoryPort is the read-only directory collaborator.
// Both calls are synchronous and may fail with a transport error,
// which callers must propagate rather than treat as absence
type DirectoryPort interface {
	ListLines(ctx context.Context, name string) ([]Line, error)
	GetUser(ctx context.Context, uuid string) (User, error)
}

// Participant is a resolved user/line identity for one side of a call.
// It lives only for the duration of one interpretation
type Participant struct {
	Role     Role
	UserUUID string
	LineID   int64
	Tags     []string
}

// LineIdentity extracts the "protocol/identity" portion of a channel name
// like "sip/alice-0000001". Returns "" when the name does not carry both
// a protocol separator and a trailing suffix
func LineIdentity(channame string) string {
	slash := strings.Index(channame, "/")
	if slash < 0 {
		return ""
	}
	dash := strings.LastIndex(channame, "-")
	if dash < 0 || dash < slash {
		return ""
	}
	return channame[:dash]
}

// FindParticipant resolves a channel name to a directory participant.
// Absence (unparsable name, no matching line, line without users) is a
// nil participant with no error; directory failures are returned as-is
func FindParticipant(ctx context.Context, dir DirectoryPort, channame string, role Role) (*Participant, error) {
	identity := LineIdentity(channame)
	if identity == "" {
		return nil, nil
	}

	lines, err := dir.ListLines(ctx, identity)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	line := lines[0]
	if len(line.Users) == 0 {
		return nil, nil
	}

	user, err := dir.GetUser(ctx, line.Users[0].UUID)
	if err != nil {
		return nil, err
	}

	return &Participant{
		Role:     role,
		UserUUID: user.UUID,
		LineID:   line.ID,
		Tags:     splitTags(user.UserField),
	}, nil
}

// splitTags splits a comma separated userfield into trimmed tags
func splitTags(userfield string) []string {
	if strings.TrimSpace(userfield) == "" {
		return nil
	}
	parts := strings.Split(userfield, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	return tags
}
