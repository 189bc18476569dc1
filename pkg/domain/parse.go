package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCause builds a Cause from its compact textual form:
//
//	user:fred          user cause for "fred"
//	user               user cause for the SYSTEM user
//	upstream:proj#12   upstream cause for build 12 of "proj"
//	upstream:proj      upstream cause for build 1 of "proj"
//	remote:host:note   remote cause (note optional)
//	timer, legacy      causes without payload
//
// Any other kind is kept verbatim and is never relevant to a matcher.
func ParseCause(s string) (Cause, error) {
	if s == "" {
		return Cause{}, fmt.Errorf("empty cause")
	}

	kind, payload, hasPayload := strings.Cut(s, ":")

	switch CauseKind(kind) {
	case CauseUser:
		if !hasPayload {
			return SystemUserCause(), nil
		}
		if payload == "" {
			return Cause{}, fmt.Errorf("cause %q: empty user id", s)
		}
		return UserCause(payload), nil

	case CauseUpstream:
		project, number, hasNumber := strings.Cut(payload, "#")
		if project == "" {
			return Cause{}, fmt.Errorf("cause %q: upstream project is required", s)
		}
		build := 1
		if hasNumber {
			n, err := strconv.Atoi(number)
			if err != nil || n < 1 {
				return Cause{}, fmt.Errorf("cause %q: invalid build number %q", s, number)
			}
			build = n
		}
		return UpstreamCause(project, build), nil

	case CauseRemote:
		host, note, _ := strings.Cut(payload, ":")
		if host == "" {
			return Cause{}, fmt.Errorf("cause %q: remote host is required", s)
		}
		return RemoteCause(host, note), nil

	case CauseTimer:
		return TimerCause(), nil

	case CauseLegacy:
		return LegacyCause(), nil

	default:
		return OtherCause(kind), nil
	}
}

// ParseCauses parses every entry with ParseCause, preserving order.
func ParseCauses(specs []string) ([]Cause, error) {
	causes := make([]Cause, 0, len(specs))
	for _, s := range specs {
		c, err := ParseCause(s)
		if err != nil {
			return nil, err
		}
		causes = append(causes, c)
	}
	return causes, nil
}
