// pkg/registry/schema.go
package registry

import "strings"

// ActivityRegistry is the on-disk catalog of every worker the fleet can
// run. configs/activity-registry.json is the checked-in copy; the
// registry-updater tool rewrites it and the worker-generator scaffolds
// new workers from it.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one BPMN service task and the worker that serves
// it. IDs follow domain.subject.action; TaskType is the kebab-case job
// type the worker subscribes to.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// PackageName derives the Go package name for the activity's worker
// from its task type: "dedupe-message" -> "dedupemessage".
func (a Activity) PackageName() string {
	return strings.ReplaceAll(a.TaskType, "-", "")
}

// Directory maps the activity's category onto the directory the worker
// lives under in internal/workers/.
func (a Activity) Directory() string {
	switch a.Category {
	case "user-management":
		return "users"
	case "search-parsing":
		return "listings"
	default:
		return strings.ToLower(a.Category)
	}
}
