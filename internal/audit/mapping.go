package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP request.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseRoute returns action and resource for an HTTP method and path
// (e.g. POST /events/ -> create/event, PATCH /events/7 -> update/event).
// Resource is the first path segment singularized; unknown shapes map to "unknown".
func ParseRoute(method, path string) ActionResource {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return ActionResource{Action: methodToAction(method, false), Resource: "unknown"}
	}
	resource := segmentToResource(segs[0])
	if resource == "auth" && len(segs) > 1 {
		return ActionResource{Action: strings.ToLower(segs[1]), Resource: resource}
	}
	return ActionResource{Action: methodToAction(method, len(segs) > 1), Resource: resource}
}

func segmentToResource(seg string) string {
	switch seg {
	case "events":
		return "event"
	case "eventlogs":
		return "eventlog"
	case "stats":
		return "stats"
	case "auth":
		return "auth"
	default:
		return strings.TrimSuffix(strings.ToLower(seg), "s")
	}
}

func methodToAction(method string, item bool) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		if item {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
